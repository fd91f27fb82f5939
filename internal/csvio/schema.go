package csvio

import (
	"fmt"
	"strings"
)

// Column names accepted in an input file header. The transactional /
// non_transactional boolean flags are the pre-2017 suppression format
// and still appear in old exports.
const (
	ColRecipient        = "recipient"
	ColType             = "type"
	ColDescription      = "description"
	ColSubaccountID     = "subaccount_id"
	ColCreated          = "created"
	ColUpdated          = "updated"
	ColTransactional    = "transactional"
	ColNonTransactional = "non_transactional"
)

var recognizedColumns = map[string]bool{
	ColRecipient:        true,
	ColType:             true,
	ColDescription:      true,
	ColSubaccountID:     true,
	ColCreated:          true,
	ColUpdated:          true,
	ColTransactional:    true,
	ColNonTransactional: true,
}

// Schema describes how each CSV column maps onto entry fields.
type Schema struct {
	Columns   []string
	HasHeader bool
}

// DetectSchema inspects the first row of a file. A row naming
// "recipient" is a header and every column must be a recognized name.
// A single-column row containing an @-sign is data from a headerless
// recipient-only file. Anything else is a fatal format error.
func DetectSchema(first []string) (Schema, error) {
	for _, col := range first {
		if strings.EqualFold(strings.TrimSpace(col), ColRecipient) {
			return headerSchema(first)
		}
	}

	if len(first) == 1 && strings.Contains(first[0], "@") {
		return Schema{Columns: []string{ColRecipient}, HasHeader: false}, nil
	}

	return Schema{}, fmt.Errorf("invalid CSV header: must contain a %q column or be a bare list of addresses", ColRecipient)
}

func headerSchema(first []string) (Schema, error) {
	cols := make([]string, len(first))
	for i, col := range first {
		name := strings.ToLower(strings.TrimSpace(col))
		if !recognizedColumns[name] {
			return Schema{}, fmt.Errorf("unexpected CSV column name %q", col)
		}
		cols[i] = name
	}
	return Schema{Columns: cols, HasHeader: true}, nil
}

// RowValues pairs a data row with the schema's column names, skipping
// empty fields so configured defaults can fill them later. Extra fields
// beyond the schema are ignored, short rows yield what they have.
func (s Schema) RowValues(row []string) map[string]string {
	values := make(map[string]string, len(s.Columns))
	for i, col := range s.Columns {
		if i >= len(row) {
			break
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			values[col] = v
		}
	}
	return values
}
