package models

import "time"

// Well-known stack output keys produced by the fleet template.
const (
	OutputPublicIP          = "PublicIP"
	OutputEndpointURL       = "EndpointURL"
	OutputSSHCommand        = "SSHCommand"
	OutputFleetRequestID    = "SpotFleetRequestId"
	OutputInstanceFamilies  = "InstanceFamilies"
	OutputAvailabilityZones = "AvailabilityZones"
)

// StackOutputs maps output keys to their values for a completed stack.
type StackOutputs map[string]string

// StackEvent is one status event from the stack's event stream, used for
// diagnostic dumps when a deployment fails.
type StackEvent struct {
	Timestamp    time.Time
	LogicalID    string
	ResourceType string
	Status       string
	Reason       string
}
