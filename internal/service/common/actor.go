//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	"github.com/oshokin/setup-package/internal/domain/setup"
)

// DetectActor gathers host and user information recorded in the install receipt.
func DetectActor() (*setup.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &setup.Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
