package runner

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ignite/sparkpost-suppress/internal/config"
	"github.com/ignite/sparkpost-suppress/internal/csvio"
	"github.com/ignite/sparkpost-suppress/internal/records"
	"github.com/ignite/sparkpost-suppress/internal/sparkpost"
)

// API is the slice of the SparkPost client the runners use. Tests stub
// it; production passes *sparkpost.Client.
type API interface {
	Search(ctx context.Context, params sparkpost.SearchParams, subaccount int) (*sparkpost.SearchResponse, error)
	Upsert(ctx context.Context, entries []sparkpost.SuppressionEntry, subaccount int) error
	Delete(ctx context.Context, recipient string, subaccount int) error
}

// loadEntries runs the shared read half of check, update and delete:
// decode the file, detect the schema, build and validate every row, and
// count valid/invalid/duplicate into sum. Only file-level problems are
// returned as errors; row-level problems are reported and skipped.
func loadEntries(cfg config.Config, path string, rep *Reporter, sum *Summary) ([]records.Entry, error) {
	fd, err := csvio.ReadFile(path, cfg.Encodings)
	if fd != nil {
		for _, a := range fd.Attempts {
			rep.EncodingAttempt(a)
		}
	}
	if err != nil {
		return nil, err
	}
	rep.FileRead(path, fd.Encoding, countLines(fd.Text))

	rows, err := fd.Rows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		log.WithField("file", path).Warn("file contains no rows")
		return nil, nil
	}

	schema, err := csvio.DetectSchema(rows[0])
	if err != nil {
		return nil, err
	}
	dataStart := 0
	if schema.HasHeader {
		dataStart = 1
	}

	defaults := records.Defaults{
		Type:        cfg.TypeDefault,
		Description: cfg.DescriptionDefault,
		Subaccount:  cfg.Subaccount,
	}
	builder := records.NewBuilder(schema, defaults)

	entries := make([]records.Entry, 0, len(rows)-dataStart)
	for i := dataStart; i < len(rows); i++ {
		entry, rowErr := builder.Build(i+1, rows[i])
		if rowErr != nil {
			if rowErr.Duplicate {
				sum.AddDuplicate()
			} else {
				sum.AddInvalid()
			}
			rep.RowError(rowErr)
			continue
		}
		sum.AddValid()
		entries = append(entries, entry)
	}

	return entries, nil
}

// countLines counts text lines without letting a trailing newline add a
// phantom empty line.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(text, "\n"), "\n") + 1
}
