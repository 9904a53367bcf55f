package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oshokin/setup-package/internal/domain/setup"
)

// nameSeparator splits "Agent-1000_base-Merged.ipynb" into its segments.
const nameSeparator = "-"

// ParseRows builds a version mapping from spreadsheet rows.
// The identifier is the second "-" separated segment of the name column and
// the value is the version column rendered as a string. Rows without a name,
// without a version or without a separator are skipped; their count is
// returned so callers can report it. Later rows override earlier ones.
func ParseRows(rows []setup.Row, nameColumn, versionColumn string) (setup.Mapping, int) {
	mapping := make(setup.Mapping, len(rows))
	skipped := 0

	for _, row := range rows {
		name := cellString(row[nameColumn])
		version := cellString(row[versionColumn])

		if name == "" || version == "" {
			skipped++
			continue
		}

		parts := strings.Split(name, nameSeparator)
		if len(parts) < 2 {
			skipped++
			continue
		}

		mapping[parts[1]] = version
	}

	return mapping, skipped
}

// cellString renders a cell value as text.
// Empty strings and zero numbers count as missing.
func cellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}

		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v == 0 {
			return ""
		}

		return strconv.Itoa(v)
	case int64:
		if v == 0 {
			return ""
		}

		return strconv.FormatInt(v, 10)
	case bool:
		if !v {
			return ""
		}

		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
