package sparkpost

import (
	"fmt"
	"strings"
)

// SuppressionEntry is the wire form of one suppression-list entry.
// Created/Updated are set by the server and only appear in search
// results; subaccount scoping travels in a header, not the body.
type SuppressionEntry struct {
	Recipient   string `json:"recipient"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Subaccount  int    `json:"subaccount_id,omitempty"`
	Created     string `json:"created,omitempty"`
	Updated     string `json:"updated,omitempty"`
}

// SearchParams select a page of suppression-list entries. From/To are
// already formatted with their UTC offset (YYYY-MM-DDTHH:MM:SS±hhmm).
type SearchParams struct {
	Cursor  string
	PerPage int
	From    string
	To      string
}

// SearchResponse is one page of suppression-list results.
type SearchResponse struct {
	Results    []SuppressionEntry `json:"results"`
	Links      []Link             `json:"links"`
	TotalCount int                `json:"total_count"`
}

// Link is a pagination link in a search response.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type errorDetail struct {
	Message     string `json:"message"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type errorResponse struct {
	Errors []errorDetail `json:"errors"`
}

// APIError is a non-2xx response from the API, carrying the parsed
// errors payload when the body had one.
type APIError struct {
	StatusCode int
	Messages   []string
	Body       string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// NotFound reports whether the error was a 404. A delete for an absent
// recipient answers 404 and the caller treats it as already done.
func (e *APIError) NotFound() bool {
	return e.StatusCode == 404
}
