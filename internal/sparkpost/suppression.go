package sparkpost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// InitialCursor starts a suppression-list search from the first page.
const InitialCursor = "initial"

// Search fetches one page of suppression-list entries. Follow the
// cursor from NextCursor to page through the full list.
func (c *Client) Search(ctx context.Context, params SearchParams, subaccount int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("cursor", params.Cursor)
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}
	if params.From != "" {
		q.Set("from", params.From)
	}
	if params.To != "" {
		q.Set("to", params.To)
	}

	body, err := c.doRequest(ctx, http.MethodGet, suppressionPath, q, nil, subaccount)
	if err != nil {
		return nil, fmt.Errorf("fetching suppression list: %w", err)
	}

	var response SearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing suppression list: %w", err)
	}

	return &response, nil
}

// Upsert creates or updates a batch of entries in one call. All entries
// in the batch belong to the subaccount the call is scoped to.
func (c *Client) Upsert(ctx context.Context, entries []SuppressionEntry, subaccount int) error {
	payload, err := json.Marshal(struct {
		Recipients []SuppressionEntry `json:"recipients"`
	}{Recipients: entries})
	if err != nil {
		return fmt.Errorf("encoding suppression batch: %w", err)
	}

	if _, err := c.doRequest(ctx, http.MethodPut, suppressionPath, nil, payload, subaccount); err != nil {
		return fmt.Errorf("updating suppression list: %w", err)
	}
	return nil
}

// Delete removes one recipient from the suppression list. The endpoint
// accepts exactly one address per call.
func (c *Client) Delete(ctx context.Context, recipient string, subaccount int) error {
	path := suppressionPath + "/" + url.PathEscape(recipient)
	if _, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil, subaccount); err != nil {
		return fmt.Errorf("deleting %s: %w", recipient, err)
	}
	return nil
}

// NextCursor extracts the next-page cursor from a response's links.
// It returns ok=false when there is no next page, and an error for a
// link rel the API contract does not define.
func NextCursor(links []Link) (cursor string, ok bool, err error) {
	for _, l := range links {
		switch l.Rel {
		case "next":
			u, err := url.Parse(l.Href)
			if err != nil {
				return "", false, fmt.Errorf("parsing next link %q: %w", l.Href, err)
			}
			next := u.Query().Get("cursor")
			if next == "" {
				return "", false, fmt.Errorf("next link %q has no cursor", l.Href)
			}
			return next, true, nil
		case "first", "previous", "last":
			// Not needed for forward pagination.
		default:
			return "", false, fmt.Errorf("unexpected link rel %q in response", l.Rel)
		}
	}
	return "", false, nil
}
