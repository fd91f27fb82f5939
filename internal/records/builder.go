// Package records turns raw CSV rows into validated suppression
// entries, applying configured defaults and first-wins recipient
// deduplication.
package records

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ignite/sparkpost-suppress/internal/csvio"
	"github.com/ignite/sparkpost-suppress/internal/emailaddr"
)

// Entry types accepted by the suppression API.
const (
	TypeTransactional    = "transactional"
	TypeNonTransactional = "non_transactional"
)

// Entry is one suppression-list entry. Created/Updated only appear on
// entries read back from the API and are never sent on upsert.
type Entry struct {
	Recipient   string
	Type        string
	Description string
	Subaccount  int
	Created     string
	Updated     string
}

// RowError reports a row that was excluded from processing. Duplicate
// rows carry no Reason; everything else does.
type RowError struct {
	Line      int
	Recipient string
	Duplicate bool
	Reason    string
}

func (e RowError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("line %d: %s: duplicate recipient", e.Line, e.Recipient)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Defaults fill entry fields a row leaves empty.
type Defaults struct {
	Type        string
	Description string
	Subaccount  int
}

// Builder converts rows into entries one at a time, remembering every
// recipient it has accepted so repeats are reported as duplicates.
// First occurrence wins.
type Builder struct {
	schema   csvio.Schema
	defaults Defaults
	seen     map[string]struct{}
}

// NewBuilder creates a Builder for one run over one file.
func NewBuilder(schema csvio.Schema, defaults Defaults) *Builder {
	return &Builder{
		schema:   schema,
		defaults: defaults,
		seen:     make(map[string]struct{}),
	}
}

// Build converts a raw row into an Entry. A non-nil *RowError means the
// row was rejected (invalid or duplicate); the run continues regardless.
func (b *Builder) Build(line int, row []string) (Entry, *RowError) {
	values := b.schema.RowValues(row)

	recipient := values[csvio.ColRecipient]
	if recipient == "" {
		return Entry{}, &RowError{Line: line, Reason: "missing recipient"}
	}
	if err := emailaddr.Validate(recipient); err != nil {
		return Entry{}, &RowError{Line: line, Recipient: recipient, Reason: fmt.Sprintf("%s: %v", recipient, err)}
	}

	key := strings.ToLower(recipient)
	if _, dup := b.seen[key]; dup {
		return Entry{}, &RowError{Line: line, Recipient: recipient, Duplicate: true}
	}

	entry := Entry{
		Recipient:   recipient,
		Type:        b.defaults.Type,
		Description: b.defaults.Description,
		Subaccount:  b.defaults.Subaccount,
		Created:     values[csvio.ColCreated],
		Updated:     values[csvio.ColUpdated],
	}

	if t, ok := values[csvio.ColType]; ok {
		if t != TypeTransactional && t != TypeNonTransactional {
			return Entry{}, &RowError{Line: line, Recipient: recipient, Reason: fmt.Sprintf("invalid type %q", t)}
		}
		entry.Type = t
	}

	// Legacy boolean flag columns map onto Type when set true.
	if flag, ok := values[csvio.ColTransactional]; ok {
		set, err := parseFlag(flag)
		if err != nil {
			return Entry{}, &RowError{Line: line, Recipient: recipient, Reason: fmt.Sprintf("invalid transactional flag %q", flag)}
		}
		if set {
			entry.Type = TypeTransactional
		}
	}
	if flag, ok := values[csvio.ColNonTransactional]; ok {
		set, err := parseFlag(flag)
		if err != nil {
			return Entry{}, &RowError{Line: line, Recipient: recipient, Reason: fmt.Sprintf("invalid non_transactional flag %q", flag)}
		}
		if set {
			entry.Type = TypeNonTransactional
		}
	}

	if d, ok := values[csvio.ColDescription]; ok {
		entry.Description = d
	}
	if s, ok := values[csvio.ColSubaccountID]; ok {
		sub, err := strconv.Atoi(s)
		if err != nil || sub < 0 {
			return Entry{}, &RowError{Line: line, Recipient: recipient, Reason: fmt.Sprintf("invalid subaccount_id %q", s)}
		}
		entry.Subaccount = sub
	}

	b.seen[key] = struct{}{}
	return entry, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean")
}
