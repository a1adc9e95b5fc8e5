// Package common holds helpers shared by the publisher commands.
//
// It detects the current system actor (user@host) used in default record
// descriptions and guards against two publishers running at once.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
