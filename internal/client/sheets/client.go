package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/oshokin/setup-package/internal/domain/setup"
)

const (
	// formattedValue returns cells as displayed, so "1.0" stays "1.0".
	formattedValue = "FORMATTED_VALUE"
	titleFields      = "sheets.properties.title"
)

// Client is a row source backed by the Sheets v4 API.
type Client struct {
	spreadsheets *sheets.SpreadsheetsService
}

// New creates a Sheets client; opts carry credentials or a test endpoint.
func New(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{spreadsheets: service.Spreadsheets}, nil
}

// FetchRows returns every record of tab keyed by the header row.
func (c *Client) FetchRows(ctx context.Context, sourceID, tab string) ([]setup.Row, error) {
	spreadsheet, err := c.spreadsheets.Get(sourceID).
		Fields(titleFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: spreadsheet %s: %w", setup.ErrSourceUnavailable, sourceID, err)
	}

	if !hasTab(spreadsheet, tab) {
		return nil, fmt.Errorf("%w: %q in spreadsheet %s", setup.ErrTabNotFound, tab, sourceID)
	}

	values, err := c.spreadsheets.Values.Get(sourceID, quoteTab(tab)).
		ValueRenderOption(formattedValue).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %w", setup.ErrSourceUnavailable, tab, err)
	}

	return records(values.Values), nil
}

func hasTab(spreadsheet *sheets.Spreadsheet, tab string) bool {
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == tab {
			return true
		}
	}

	return false
}

// quoteTab turns a tab title into an A1 range covering the whole tab.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// records maps every row after the header to its header names.
// Cells past the end of a short row are left out of the record.
func records(values [][]any) []setup.Row {
	if len(values) == 0 {
		return nil
	}

	header := make([]string, len(values[0]))
	for i, cell := range values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(cell))
	}

	rows := make([]setup.Row, 0, len(values)-1)

	for _, cells := range values[1:] {
		row := make(setup.Row, len(header))

		for i, name := range header {
			if name == "" || i >= len(cells) {
				continue
			}

			row[name] = cells[i]
		}

		rows = append(rows, row)
	}

	return rows
}
