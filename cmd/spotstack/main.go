package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/younsl/spotstack/internal/models"
	"github.com/younsl/spotstack/internal/version"
	awsops "github.com/younsl/spotstack/pkg/aws"
	"github.com/younsl/spotstack/pkg/formatter"
	"github.com/younsl/spotstack/pkg/preflight"
	"github.com/younsl/spotstack/pkg/pricing"
	"github.com/younsl/spotstack/pkg/probe"
	"github.com/younsl/spotstack/pkg/reconcile"
	"github.com/younsl/spotstack/pkg/stack"
	"github.com/younsl/spotstack/pkg/utils"
)

// DefaultTemplatePath is the fleet stack definition shipped with the tool.
const DefaultTemplatePath = "templates/spotstack.cfn.yaml"

var (
	stackName    string
	region       string
	keyName      string
	templatePath string
	autoApprove  bool
	showVersion  bool
)

// startPhaseSpinner creates and starts a spinner with a message for the given phase
func startPhaseSpinner(phase string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond)
	s.Suffix = fmt.Sprintf(" %s ...", phase)
	// FinalMSG is set dynamically when the phase completes
	s.Start()
	return s
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "spotstack",
		Short: "Provision a spot-priced multi-AZ EC2 fleet",
		Long: `spotstack provisions a spot-priced, multi-AZ compute fleet through a
CloudFormation stack: it fetches live spot-market prices, computes buffered
bid prices per instance family, and deploys and monitors the stack.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				info := version.Get()
				fmt.Printf("spotstack version %s (built: %s, commit: %s, %s)\n",
					info.Version, info.BuildDate, info.GitCommit, info.GoVersion)
				return nil
			}
			return run(cmd.Context())
		},
	}

	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version information")
	rootCmd.Flags().StringVarP(&stackName, "stack", "s", "spotstack", "Name of the fleet stack")
	rootCmd.Flags().StringVarP(&region, "region", "r", utils.GetDefaultRegion(), "AWS region to deploy into")
	rootCmd.Flags().StringVarP(&keyName, "key", "k", "spotstack", "EC2 key pair for instance access")
	rootCmd.Flags().StringVarP(&templatePath, "template", "t", DefaultTemplatePath, "Path to the stack template")
	rootCmd.Flags().BoolVarP(&autoApprove, "yes", "y", false, "Skip interactive confirmations")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if !utils.IsValidRegion(region) {
		return fmt.Errorf("invalid region %q", region)
	}

	// An interrupt gets a single notice; in-flight platform operations are
	// left to finish or roll back on their own
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		fmt.Println("\nInterrupt received. In-flight stack operations are not rolled back; check the stack before re-running.")
		os.Exit(1)
	}()

	confirm := stack.StdinConfirmer(os.Stdin, os.Stdout)
	if autoApprove {
		confirm = stack.AlwaysConfirm
	}

	// Phase 1: estimate bid prices from the spot market
	fmt.Println("Starting spot price estimation ...")
	estimateStart := time.Now()
	sp := startPhaseSpinner("Analyzing spot market prices")

	spotClient, err := awsops.NewSpotPriceClient(region)
	if err != nil {
		sp.Stop()
		return err
	}

	estimator := pricing.NewEstimator(spotClient, region)
	bids := estimator.EstimateBids(ctx)

	sp.FinalMSG = fmt.Sprintf("✓ [%d families priced] Spot market analyzed - Completed in %.2f seconds\n",
		len(bids), time.Since(estimateStart).Seconds())
	sp.Stop()

	// Display API init message if any
	if msg := pricing.GetInitMessage(); msg != "" {
		fmt.Println(msg)
	}

	formatter.PrintBidsTable(os.Stdout, bids)

	// Phase 2: prerequisites, any failure is fatal
	fmt.Println("\nChecking prerequisites ...")

	credsClient, err := awsops.NewCredentialsClient(region)
	if err != nil {
		return err
	}
	keyPairClient, err := awsops.NewKeyPairClient(region)
	if err != nil {
		return err
	}
	roleClient, err := awsops.NewRoleClient(region)
	if err != nil {
		return err
	}

	var account string
	resolveIdentity := func(ctx context.Context) (string, error) {
		identity, err := credsClient.Identity(ctx)
		if err != nil {
			return "", err
		}
		account = identity.Account
		return identity.Account, nil
	}

	runner := &preflight.Runner{Out: os.Stdout}
	err = runner.Run(ctx, []preflight.Check{
		preflight.TemplateCheck(templatePath),
		preflight.CredentialsCheck(resolveIdentity),
		preflight.ExistenceCheck("key pair", keyName, keyPairClient.Exists),
		preflight.ExistenceCheck("IAM role", awsops.FleetRoleName, roleClient.Exists),
	})
	if err != nil {
		return err
	}

	ok, err := confirm(fmt.Sprintf("\nDeploy stack %s to %s with the bid prices above?", stackName, region))
	if err != nil {
		return err
	}
	if !ok {
		// Declining here is a deliberate cancellation, not a failure
		fmt.Println("Deployment cancelled.")
		return nil
	}

	// Phase 3: release orphaned Elastic IPs
	fmt.Println("\nReconciling Elastic IP addresses ...")

	addressClient, err := awsops.NewAddressClient(region)
	if err != nil {
		return err
	}

	reconciler := reconcile.NewReconciler(addressClient, stackName, os.Stdout)
	released, err := reconciler.Reconcile(ctx)
	if err != nil {
		return err
	}
	formatter.PrintReleasedAddresses(os.Stdout, released)

	// Phase 4: create or update the stack
	body, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading template %s: %w", templatePath, err)
	}

	stager, err := awsops.NewTemplateStager(region, account)
	if err != nil {
		return err
	}
	tpl, err := stager.Stage(ctx, stackName, body)
	if err != nil {
		return err
	}

	stackClient, err := awsops.NewStackClient(stackName, region)
	if err != nil {
		return err
	}

	deployer := &stack.Deployer{Stack: stackClient, Confirm: confirm, Out: os.Stdout}
	result, err := deployer.Deploy(ctx, stack.Request{
		Template: tpl,
		KeyName:  keyName,
		Bids:     bids,
		Families: pricing.Families(),
	})
	if err != nil {
		return err
	}

	// Phase 5: monitor the deployment to a terminal state
	if result.Changed {
		action := "Update"
		if result.Created {
			action = "Create"
		}
		fmt.Printf("\n%s submitted. Monitoring deployment (poll every %s, timeout %s) ...\n",
			action, stack.MonitorInterval, stack.MonitorTimeout)

		deployStart := time.Now()
		monitor := stack.NewMonitor(stackClient, os.Stdout)
		if err := monitor.Wait(ctx); err != nil {
			return err
		}
		formatter.PrintPhaseDone(os.Stdout, "Stack deployment", deployStart)
	}

	// Phase 6: report outputs and probe the service endpoint
	outputs, err := stackClient.Outputs(ctx)
	if err != nil {
		return err
	}
	formatter.PrintStackOutputs(os.Stdout, outputs)

	if url := outputs[models.OutputEndpointURL]; url != "" {
		fmt.Printf("\nProbing service readiness at %s ...\n", url)
		prober := probe.NewProber(os.Stdout)
		if !prober.Wait(ctx, url) {
			// Readiness exhaustion is a warning only, the deployment stands
			fmt.Printf("Warning: service did not respond within %d attempts. The stack is deployed; check instance startup logs.\n",
				prober.Attempts)
		}
	}

	formatter.PrintPricingAPIStats(os.Stdout)

	fmt.Printf("\n✓ Stack %s deployed successfully\n", stackName)
	return nil
}
