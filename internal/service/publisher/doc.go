// Package publisher publishes an artifact to hawkBit and optionally rolls it out.
//
// One cycle creates a software module, uploads the artifact, wraps the module
// into a distribution set and, when a target filter is given, creates, starts
// and waits for a rollout. Several cycles with suffixed versions run when more
// than one rollout is requested.
package publisher
