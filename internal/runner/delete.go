package runner

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ignite/sparkpost-suppress/internal/config"
	"github.com/ignite/sparkpost-suppress/internal/records"
	"github.com/ignite/sparkpost-suppress/internal/sparkpost"
)

// Delete validates the file and removes each entry from the provider's
// list. The endpoint accepts one address per call, so a fixed pool of
// DeleteThreads workers drains a shared queue; each worker finishes its
// popped entry before taking the next. A 404 means the recipient was
// already absent and counts as completed.
func Delete(ctx context.Context, api API, cfg config.Config, path string, rep *Reporter) error {
	sum := NewSummary()

	entries, err := loadEntries(cfg, path, rep, sum)
	if err != nil {
		return err
	}

	queue := make(chan records.Entry, 10*cfg.DeleteThreads)

	var wg sync.WaitGroup
	for i := 0; i < cfg.DeleteThreads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range queue {
				deleteOne(ctx, api, entry, rep, sum)
			}
		}()
	}

	for _, entry := range entries {
		queue <- entry
	}
	close(queue)
	wg.Wait()

	rep.Summary(sum.Snapshot())
	return nil
}

func deleteOne(ctx context.Context, api API, entry records.Entry, rep *Reporter, sum *Summary) {
	err := api.Delete(ctx, entry.Recipient, entry.Subaccount)
	if err != nil {
		var apiErr *sparkpost.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			log.WithField("recipient", entry.Recipient).Debug("recipient already absent from suppression list")
			sum.AddCompleted(1)
			rep.Deleted(entry.Recipient)
			return
		}
		rep.DeleteFailed(entry.Recipient, err)
		return
	}
	sum.AddCompleted(1)
	rep.Deleted(entry.Recipient)
}
