package models

// AddressInfo represents an Elastic IP allocation considered by the
// reconciler. Only unassociated allocations are ever listed.
type AddressInfo struct {
	AllocationID    string
	PublicIP        string
	OwnerStack      string // value of the owner tag, empty when absent or blank
	OwnerTagPresent bool   // distinguishes a blank tag from a missing one
	Region          string
}
