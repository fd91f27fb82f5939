package runner

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ignite/sparkpost-suppress/internal/config"
	"github.com/ignite/sparkpost-suppress/internal/records"
	"github.com/ignite/sparkpost-suppress/internal/sparkpost"
)

// batch is one outbound upsert call: up to BatchSize entries, all with
// the same resolved subaccount.
type batch struct {
	subaccount int
	entries    []sparkpost.SuppressionEntry
}

// Update validates the file and uploads its contents in batches. A
// failed batch is reported and the run moves on to the next one; rate
// limiting never fails a batch.
func Update(ctx context.Context, api API, cfg config.Config, path string, rep *Reporter) error {
	sum := NewSummary()

	entries, err := loadEntries(cfg, path, rep, sum)
	if err != nil {
		return err
	}

	for i, b := range makeBatches(entries, cfg.BatchSize) {
		start := time.Now()
		if err := api.Upsert(ctx, b.entries, b.subaccount); err != nil {
			log.WithFields(log.Fields{
				"batch":      i + 1,
				"subaccount": b.subaccount,
				"size":       len(b.entries),
			}).WithError(err).Error("suppression batch failed")
			rep.BatchFailed(i+1, b.subaccount, len(b.entries), err)
			continue
		}
		sum.AddCompleted(len(b.entries))
		rep.BatchDone(i+1, b.subaccount, len(b.entries), time.Since(start))
	}

	rep.Summary(sum.Snapshot())
	return nil
}

// makeBatches groups entries by subaccount, preserving input order
// within each group, then slices each group into batches of at most
// size entries. Two subaccounts never share a batch.
func makeBatches(entries []records.Entry, size int) []batch {
	var order []int
	groups := make(map[int][]sparkpost.SuppressionEntry)
	for _, e := range entries {
		if _, ok := groups[e.Subaccount]; !ok {
			order = append(order, e.Subaccount)
		}
		groups[e.Subaccount] = append(groups[e.Subaccount], sparkpost.SuppressionEntry{
			Recipient:   e.Recipient,
			Type:        e.Type,
			Description: e.Description,
		})
	}

	var batches []batch
	for _, sub := range order {
		group := groups[sub]
		for start := 0; start < len(group); start += size {
			end := start + size
			if end > len(group) {
				end = len(group)
			}
			batches = append(batches, batch{subaccount: sub, entries: group[start:end]})
		}
	}
	return batches
}
