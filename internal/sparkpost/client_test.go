package sparkpost

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/sparkpost-suppress/internal/config"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		baseURL: server.URL,
		apiKey:  "test-api-key",
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func TestNewClient(t *testing.T) {
	cfg := config.Config{
		APIKey:         "test-key",
		Host:           "api.sparkpost.com",
		SnoozeSeconds:  10,
		TimeoutSeconds: 30,
	}

	client := NewClient(cfg)

	assert.NotNil(t, client)
	assert.Equal(t, "test-key", client.apiKey)
	assert.Equal(t, "https://api.sparkpost.com/api/v1", client.baseURL)
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/suppression-list", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "initial", r.URL.Query().Get("cursor"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "2026-01-01T00:00:00+0000", r.URL.Query().Get("from"))
		assert.Empty(t, r.Header.Get("X-MSYS-SUBACCOUNT"))

		response := SearchResponse{
			Results: []SuppressionEntry{
				{Recipient: "user@example.com", Type: "non_transactional", Description: "bounced"},
			},
			TotalCount: 1,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := newTestClient(server)

	resp, err := client.Search(context.Background(), SearchParams{
		Cursor:  InitialCursor,
		PerPage: 100,
		From:    "2026-01-01T00:00:00+0000",
	}, 0)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "user@example.com", resp.Results[0].Recipient)
	assert.Equal(t, 1, resp.TotalCount)
}

func TestSearchSubaccountHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.Header.Get("X-MSYS-SUBACCOUNT"))
		w.Write([]byte(`{"results":[],"total_count":0}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.Search(context.Background(), SearchParams{Cursor: InitialCursor}, 42)
	require.NoError(t, err)
}

func TestUpsert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/suppression-list", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "7", r.Header.Get("X-MSYS-SUBACCOUNT"))

		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Recipients []SuppressionEntry `json:"recipients"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Len(t, payload.Recipients, 2)
		assert.Equal(t, "a@example.com", payload.Recipients[0].Recipient)
		assert.Equal(t, "non_transactional", payload.Recipients[0].Type)

		w.Write([]byte(`{"results":{"message":"Suppression List successfully updated"}}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	err := client.Upsert(context.Background(), []SuppressionEntry{
		{Recipient: "a@example.com", Type: "non_transactional", Description: "import"},
		{Recipient: "b@example.com", Type: "non_transactional", Description: "import"},
	}, 7)
	require.NoError(t, err)
}

func TestDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/suppression-list/user@example.com", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server)
	err := client.Delete(context.Background(), "user@example.com", 0)
	require.NoError(t, err)
}

func TestAPIErrorParsed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"message":"Recipient could not be processed","code":"1902"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	err := client.Upsert(context.Background(), []SuppressionEntry{{Recipient: "x@example.com"}}, 0)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "Recipient could not be processed")
	assert.False(t, apiErr.NotFound())
}

func TestDeleteNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"message":"Recipient could not be found"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	err := client.Delete(context.Background(), "gone@example.com", 0)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
}

func TestContextCancellation(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client := newTestClient(server)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, SearchParams{Cursor: InitialCursor}, 0)
	require.Error(t, err)
}

func TestNextCursor(t *testing.T) {
	cursor, ok, err := NextCursor([]Link{
		{Rel: "first", Href: "/api/v1/suppression-list?cursor=initial"},
		{Rel: "next", Href: "/api/v1/suppression-list?cursor=AbC123&per_page=100"},
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "AbC123", cursor)
}

func TestNextCursorLastPage(t *testing.T) {
	_, ok, err := NextCursor([]Link{
		{Rel: "first", Href: "/api/v1/suppression-list?cursor=initial"},
		{Rel: "previous", Href: "/api/v1/suppression-list?cursor=xyz"},
	})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = NextCursor(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextCursorUnexpectedRel(t *testing.T) {
	_, _, err := NextCursor([]Link{{Rel: "sideways", Href: "/x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}
