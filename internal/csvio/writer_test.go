package csvio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterRestrictsColumns(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, []string{"recipient", "type", "description"})
	require.NoError(t, err)

	require.NoError(t, w.Write(map[string]string{
		"recipient":   "user@example.com",
		"type":        "transactional",
		"description": "bounced",
		"created":     "2026-01-01T00:00:00Z", // not in the subset, dropped
	}))
	require.NoError(t, w.Write(map[string]string{
		"recipient": "other@example.com", // missing fields written empty
	}))
	require.NoError(t, w.Flush())

	assert.Equal(t,
		"recipient,type,description\n"+
			"user@example.com,transactional,bounced\n"+
			"other@example.com,,\n",
		buf.String())
}
