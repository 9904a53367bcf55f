package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/oshokin/setup-package/internal/domain/setup"
)

const (
	// listPageSize is the number of files requested per listing page.
	listPageSize = 100

	listFields = "nextPageToken, files(id, name, size)"
)

// Client is a file store backed by the Drive v3 API.
type Client struct {
	files *drive.FilesService
}

// New creates a Drive client; opts carry credentials or a test endpoint.
func New(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Client{files: service.Files}, nil
}

// ListEntries returns the non-trashed files inside folderID in listing order.
func (c *Client) ListEntries(ctx context.Context, folderID string) ([]setup.Entry, error) {
	var entries []setup.Entry

	err := c.files.List().
		Q(folderQuery(folderID)).
		Fields(listFields).
		PageSize(listPageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, file := range page.Files {
				entries = append(entries, setup.Entry{
					ID:   file.Id,
					Name: file.Name,
					Size: file.Size,
				})
			}

			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list files in %s: %w", folderID, err)
	}

	return entries, nil
}

// DownloadEntry streams the contents of the file with entryID.
func (c *Client) DownloadEntry(ctx context.Context, entryID string) (io.ReadCloser, error) {
	response, err := c.files.Get(entryID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", entryID, err)
	}

	return response.Body, nil
}

// folderQuery selects the files whose parent is folderID.
func folderQuery(folderID string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(folderID)

	return fmt.Sprintf("'%s' in parents and trashed=false", escaped)
}
