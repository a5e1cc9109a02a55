package aws

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MaxInlineTemplateBytes is the CloudFormation limit for templates passed
// inline as TemplateBody; larger documents must be staged in S3.
const MaxInlineTemplateBytes = 51200

// TemplateStagerAPI is the slice of the S3 API the template stager uses.
type TemplateStagerAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// TemplateStager stages oversized stack templates in a per-account S3
// bucket so they can be submitted by URL.
type TemplateStager struct {
	api     TemplateStagerAPI
	bucket  string
	region  string
	nowFunc func() time.Time
}

// NewTemplateStager creates a TemplateStager with the account-scoped
// staging bucket name.
func NewTemplateStager(region, account string) (*TemplateStager, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &TemplateStager{
		api:    s3.NewFromConfig(cfg),
		bucket: StagingBucketName(account, region),
		region: region,
	}, nil
}

// NewTemplateStagerFromAPI creates a TemplateStager over an existing API,
// used by tests to inject fakes.
func NewTemplateStagerFromAPI(api TemplateStagerAPI, region, account string) *TemplateStager {
	return &TemplateStager{
		api:    api,
		bucket: StagingBucketName(account, region),
		region: region,
	}
}

// StagingBucketName returns the per-account template staging bucket name.
func StagingBucketName(account, region string) string {
	return fmt.Sprintf("spotstack-templates-%s-%s", account, region)
}

// Stage returns a TemplateRef for the template body: inline when it fits
// the body limit, otherwise uploaded to the staging bucket.
func (s *TemplateStager) Stage(ctx context.Context, stackName string, body []byte) (TemplateRef, error) {
	if len(body) <= MaxInlineTemplateBytes {
		return TemplateRef{Body: string(body)}, nil
	}

	if err := s.ensureBucket(ctx); err != nil {
		return TemplateRef{}, err
	}

	now := time.Now
	if s.nowFunc != nil {
		now = s.nowFunc
	}
	key := fmt.Sprintf("%s/%s.cfn.yaml", stackName, now().UTC().Format("20060102T150405Z"))

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return TemplateRef{}, fmt.Errorf("error uploading template to s3://%s/%s: %w", s.bucket, key, err)
	}

	return TemplateRef{
		URL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
	}, nil
}

func (s *TemplateStager) ensureBucket(ctx context.Context) error {
	_, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !strings.Contains(err.Error(), "NotFound") && !strings.Contains(err.Error(), "404") {
		return fmt.Errorf("error checking staging bucket %s: %w", s.bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	// us-east-1 rejects an explicit location constraint
	if s.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(s.region),
		}
	}

	if _, err := s.api.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("error creating staging bucket %s: %w", s.bucket, err)
	}
	return nil
}
