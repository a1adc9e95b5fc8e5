// Package hawkbit contains the domain types the publisher creates on a
// hawkBit server: software modules, artifacts, distribution sets and rollouts.
//
// It also owns the cycle naming convention and the rollout completion rule.
package hawkbit
