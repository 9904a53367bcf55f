package googleauth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/oshokin/setup-package/internal/version"
)

// Scopes returns the read-only scopes used to list bundles and read the version sheet.
func Scopes() []string {
	return []string{
		drive.DriveReadonlyScope,
		sheets.SpreadsheetsReadonlyScope,
	}
}

// ClientOptions returns options authenticating with credentialsFile, or with
// application default credentials when it is empty.
func ClientOptions(ctx context.Context, credentialsFile string) ([]option.ClientOption, error) {
	credentials, err := findCredentials(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}

	return []option.ClientOption{
		option.WithCredentials(credentials),
		option.WithUserAgent(version.UserAgent()),
	}, nil
}

func findCredentials(ctx context.Context, credentialsFile string) (*google.Credentials, error) {
	if credentialsFile == "" {
		credentials, err := google.FindDefaultCredentials(ctx, Scopes()...)
		if err != nil {
			return nil, fmt.Errorf("find default credentials: %w", err)
		}

		return credentials, nil
	}

	data, err := os.ReadFile(filepath.Clean(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	credentials, err := google.CredentialsFromJSON(ctx, data, Scopes()...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", credentialsFile, err)
	}

	return credentials, nil
}
