package runner

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ignite/sparkpost-suppress/internal/csvio"
	"github.com/ignite/sparkpost-suppress/internal/records"
)

// Reporter prints progress lines and the final tally. It owns the lock
// on its writer because delete workers report concurrently.
type Reporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewReporter writes progress to out, normally os.Stdout.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

func (r *Reporter) printf(format string, args ...interface{}) {
	r.mu.Lock()
	fmt.Fprintf(r.out, format+"\n", args...)
	r.mu.Unlock()
}

// EncodingAttempt reports one failed decode attempt.
func (r *Reporter) EncodingAttempt(a csvio.Attempt) {
	r.printf("Encoding %s failed near line %d (offset %d): %v", a.Encoding, a.Line, a.Offset, a.Err)
}

// FileRead reports the encoding that won.
func (r *Reporter) FileRead(path, encoding string, lines int) {
	r.printf("File %s reads OK with encoding %s, %d lines", path, encoding, lines)
}

// RowError reports an excluded row with its line number.
func (r *Reporter) RowError(err *records.RowError) {
	r.printf("%v", err)
}

// BatchDone reports one successful upload batch.
func (r *Reporter) BatchDone(batch, subaccount, size int, elapsed time.Duration) {
	r.printf("Batch %d (subaccount %d): uploaded %d entries in %.3f seconds", batch, subaccount, size, elapsed.Seconds())
}

// BatchFailed reports one failed upload batch; the run continues.
func (r *Reporter) BatchFailed(batch, subaccount, size int, err error) {
	r.printf("Batch %d (subaccount %d, %d entries) failed: %v", batch, subaccount, size, err)
}

// TotalCount reports the server-side list size, printed once before
// page one of a retrieve.
func (r *Reporter) TotalCount(n int) {
	r.printf("Total entries to fetch: %d", n)
}

// PageDone reports one retrieved page.
func (r *Reporter) PageDone(page, size int, elapsed time.Duration) {
	r.printf("Page %d: got %d entries in %.3f seconds", page, size, elapsed.Seconds())
}

// Deleted reports one completed delete.
func (r *Reporter) Deleted(recipient string) {
	r.printf("Deleted %s", recipient)
}

// DeleteFailed reports one failed delete; the run continues.
func (r *Reporter) DeleteFailed(recipient string, err error) {
	r.printf("Delete failed for %s: %v", recipient, err)
}

// Summary prints the final tally.
func (r *Reporter) Summary(c Counts) {
	r.printf("Processed %d entries (%d valid, %d invalid, %d duplicate), %d completed in %.2f seconds",
		c.Processed, c.Valid, c.Invalid, c.Duplicate, c.Completed, c.Elapsed.Seconds())
}
