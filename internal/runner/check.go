package runner

import (
	"github.com/ignite/sparkpost-suppress/internal/config"
)

// Check validates the file's format and contents without touching the
// network. All completed work is local, so the completed counter stays
// at the valid count.
func Check(cfg config.Config, path string, rep *Reporter) error {
	sum := NewSummary()

	entries, err := loadEntries(cfg, path, rep, sum)
	if err != nil {
		return err
	}

	sum.AddCompleted(len(entries))
	rep.Summary(sum.Snapshot())
	return nil
}
