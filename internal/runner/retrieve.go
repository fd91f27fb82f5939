package runner

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ignite/sparkpost-suppress/internal/config"
	"github.com/ignite/sparkpost-suppress/internal/csvio"
	"github.com/ignite/sparkpost-suppress/internal/sparkpost"
)

// inputTimeLayout is the CLI's from/to format, minute resolution, no
// offset. The configured timezone supplies the offset.
const inputTimeLayout = "2006-01-02T15:04"

// apiTimeLayout is what the listing endpoint expects: seconds plus the
// numeric UTC offset in force at that instant (DST included).
const apiTimeLayout = "2006-01-02T15:04:05-0700"

// FormatWindow converts the CLI's naive from/to times into the API's
// offset-qualified format using the configured timezone. Both bounds
// must be given together.
func FormatWindow(from, to string, cfg config.Config) (string, string, error) {
	if from == "" && to == "" {
		return "", "", nil
	}
	if from == "" || to == "" {
		return "", "", fmt.Errorf("from_time and to_time must be given together")
	}

	loc, err := cfg.Location()
	if err != nil {
		return "", "", err
	}

	fromT, err := time.ParseInLocation(inputTimeLayout, from, loc)
	if err != nil {
		return "", "", fmt.Errorf("unrecognised from_time %q: expected YYYY-MM-DDTHH:MM", from)
	}
	toT, err := time.ParseInLocation(inputTimeLayout, to, loc)
	if err != nil {
		return "", "", fmt.Errorf("unrecognised to_time %q: expected YYYY-MM-DDTHH:MM", to)
	}
	if toT.Before(fromT) {
		return "", "", fmt.Errorf("to_time %s is before from_time %s", to, from)
	}

	return fromT.Format(apiTimeLayout), toT.Format(apiTimeLayout), nil
}

// Retrieve downloads the provider's suppression list into a UTF-8 CSV
// restricted to the configured Properties. Pages are written as they
// arrive, so memory use does not grow with list size.
func Retrieve(ctx context.Context, api API, cfg config.Config, path, from, to string, rep *Reporter) error {
	apiFrom, apiTo, err := FormatWindow(from, to, cfg)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", path, err)
	}
	defer f.Close()

	w, err := csvio.NewWriter(f, cfg.Properties)
	if err != nil {
		return err
	}

	sum := NewSummary()
	params := sparkpost.SearchParams{
		Cursor:  sparkpost.InitialCursor,
		PerPage: cfg.BatchSize,
		From:    apiFrom,
		To:      apiTo,
	}
	subaccount := 0
	if cfg.SubaccountSet {
		subaccount = cfg.Subaccount
	}

	for page := 1; ; page++ {
		start := time.Now()
		resp, err := api.Search(ctx, params, subaccount)
		if err != nil {
			return err
		}
		if page == 1 {
			rep.TotalCount(resp.TotalCount)
		}

		for _, entry := range resp.Results {
			if err := w.Write(entryValues(entry)); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			sum.AddValid()
			sum.AddCompleted(1)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		rep.PageDone(page, len(resp.Results), time.Since(start))

		cursor, more, err := sparkpost.NextCursor(resp.Links)
		if err != nil {
			return err
		}
		if !more {
			break
		}
		params.Cursor = cursor
	}

	rep.Summary(sum.Snapshot())
	return nil
}

func entryValues(e sparkpost.SuppressionEntry) map[string]string {
	values := map[string]string{
		csvio.ColRecipient:   e.Recipient,
		csvio.ColType:        e.Type,
		csvio.ColDescription: e.Description,
		csvio.ColCreated:     e.Created,
		csvio.ColUpdated:     e.Updated,
	}
	if e.Subaccount > 0 {
		values[csvio.ColSubaccountID] = strconv.Itoa(e.Subaccount)
	}
	return values
}
