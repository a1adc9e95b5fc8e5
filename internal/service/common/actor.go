//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"
)

// Actor identifies who runs the publisher.
type Actor struct {
	// Hostname is the machine the publisher runs on.
	Hostname string
	// Username is the system user running the publisher.
	Username string
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	return a.Username + "@" + a.Hostname
}

// DetectActor gathers host and user information, used to describe published records.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}

// DefaultDescription is the description used when none was given.
func DefaultDescription() string {
	actor, err := DetectActor()
	if err != nil {
		return "Published by hawkbit-publish"
	}

	return "Published by " + actor.String()
}
