// Package config defines the hawkBit connection and rollout settings used by
// the publisher and provides helpers to load, validate and save them in YAML format.
//
// Unset fields fall back to a local hawkBit instance with default credentials.
package config
