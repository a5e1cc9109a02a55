package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// GetTagValue returns the value of a tag with the given key
func GetTagValue(tags []types.Tag, key string) string {
	for _, tag := range tags {
		if tag.Key != nil && *tag.Key == key {
			if tag.Value != nil {
				return *tag.Value
			}
			return ""
		}
	}
	return ""
}

// HasTag checks if a resource has a tag with the given key
func HasTag(tags []types.Tag, key string) bool {
	for _, tag := range tags {
		if tag.Key != nil && *tag.Key == key {
			return true
		}
	}
	return false
}
