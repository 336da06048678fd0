package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"geo-leads/internal/outcome"
)

// HTTPFetcher：GET {base}/geo
type HTTPFetcher struct {
	Base   string
	Client *http.Client
}

func NewHTTPFetcher(base string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{Base: strings.TrimRight(base, "/"), Client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Base+"/geo", nil)
	if err != nil {
		return Location{}, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return Location{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geo status %d", resp.StatusCode)
	}
	var body struct {
		City  *string `json:"city"`
		State *string `json:"state"`
		Slug  *string `json:"slug"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, fmt.Errorf("decode geo: %w", err)
	}
	return Location{City: outcome.Deref(body.City), State: outcome.Deref(body.State), Slug: outcome.Deref(body.Slug)}, nil
}
