package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/sparkpost-suppress/internal/csvio"
)

var testDefaults = Defaults{
	Type:        TypeNonTransactional,
	Description: "sparkysuppress import",
}

func schemaFor(t *testing.T, cols ...string) csvio.Schema {
	t.Helper()
	s, err := csvio.DetectSchema(cols)
	require.NoError(t, err)
	return s
}

func TestBuildAppliesDefaults(t *testing.T) {
	b := NewBuilder(schemaFor(t, "recipient"), testDefaults)

	entry, rowErr := b.Build(2, []string{"user@example.com"})
	require.Nil(t, rowErr)
	assert.Equal(t, "user@example.com", entry.Recipient)
	assert.Equal(t, TypeNonTransactional, entry.Type)
	assert.Equal(t, "sparkysuppress import", entry.Description)
	assert.Equal(t, 0, entry.Subaccount)
}

func TestBuildRowOverridesDefaults(t *testing.T) {
	b := NewBuilder(schemaFor(t, "recipient", "type", "description", "subaccount_id"), testDefaults)

	entry, rowErr := b.Build(2, []string{"user@example.com", "transactional", "hard bounce", "12"})
	require.Nil(t, rowErr)
	assert.Equal(t, TypeTransactional, entry.Type)
	assert.Equal(t, "hard bounce", entry.Description)
	assert.Equal(t, 12, entry.Subaccount)
}

func TestBuildEmptyFieldsFallToDefaults(t *testing.T) {
	b := NewBuilder(schemaFor(t, "recipient", "type", "description"), testDefaults)

	entry, rowErr := b.Build(2, []string{"user@example.com", "", ""})
	require.Nil(t, rowErr)
	assert.Equal(t, TypeNonTransactional, entry.Type)
	assert.Equal(t, "sparkysuppress import", entry.Description)
}

func TestBuildRejectsInvalidEmail(t *testing.T) {
	b := NewBuilder(schemaFor(t, "recipient"), testDefaults)

	_, rowErr := b.Build(3, []string{"user@@example.com"})
	require.NotNil(t, rowErr)
	assert.Equal(t, 3, rowErr.Line)
	assert.False(t, rowErr.Duplicate)
	assert.Contains(t, rowErr.Reason, "more than one @-sign")
}

func TestBuildRejectsInvalidType(t *testing.T) {
	b := NewBuilder(schemaFor(t, "recipient", "type"), testDefaults)

	_, rowErr := b.Build(2, []string{"user@example.com", "marketing"})
	require.NotNil(t, rowErr)
	assert.Contains(t, rowErr.Reason, `invalid type "marketing"`)
}

func TestBuildLegacyFlags(t *testing.T) {
	b := NewBuilder(schemaFor(t, "recipient", "transactional", "non_transactional"), testDefaults)

	entry, rowErr := b.Build(2, []string{"a@example.com", "true", "false"})
	require.Nil(t, rowErr)
	assert.Equal(t, TypeTransactional, entry.Type)

	entry, rowErr = b.Build(3, []string{"b@example.com", "false", "TRUE"})
	require.Nil(t, rowErr)
	assert.Equal(t, TypeNonTransactional, entry.Type)

	_, rowErr = b.Build(4, []string{"c@example.com", "yes", "false"})
	require.NotNil(t, rowErr)
	assert.Contains(t, rowErr.Reason, "transactional flag")
}

func TestBuildRejectsInvalidSubaccount(t *testing.T) {
	b := NewBuilder(schemaFor(t, "recipient", "subaccount_id"), testDefaults)

	_, rowErr := b.Build(2, []string{"user@example.com", "twelve"})
	require.NotNil(t, rowErr)
	assert.Contains(t, rowErr.Reason, "subaccount_id")

	_, rowErr = b.Build(3, []string{"user@example.com", "-1"})
	require.NotNil(t, rowErr)
}

func TestBuildDeduplicatesFirstWins(t *testing.T) {
	b := NewBuilder(schemaFor(t, "recipient", "description"), testDefaults)

	entry, rowErr := b.Build(2, []string{"user@example.com", "first"})
	require.Nil(t, rowErr)
	assert.Equal(t, "first", entry.Description)

	// Same recipient, later row: duplicate regardless of other fields
	// or letter case.
	_, rowErr = b.Build(3, []string{"User@Example.com", "second"})
	require.NotNil(t, rowErr)
	assert.True(t, rowErr.Duplicate)
	assert.Equal(t, 3, rowErr.Line)
}

func TestBuildNOccurrencesYieldNMinusOneDuplicates(t *testing.T) {
	b := NewBuilder(schemaFor(t, "recipient"), testDefaults)

	const n = 5
	var valid, duplicate int
	for i := 0; i < n; i++ {
		_, rowErr := b.Build(i+1, []string{"repeat@example.com"})
		switch {
		case rowErr == nil:
			valid++
		case rowErr.Duplicate:
			duplicate++
		}
	}

	assert.Equal(t, 1, valid)
	assert.Equal(t, n-1, duplicate)
}

func TestBuildMissingRecipient(t *testing.T) {
	b := NewBuilder(schemaFor(t, "recipient", "type"), testDefaults)

	_, rowErr := b.Build(2, []string{"", "transactional"})
	require.NotNil(t, rowErr)
	assert.Contains(t, rowErr.Reason, "missing recipient")

	// An invalid row must not poison the dedup set.
	entry, rowErr := b.Build(3, []string{"user@example.com", "transactional"})
	require.Nil(t, rowErr)
	assert.Equal(t, "user@example.com", entry.Recipient)
}
