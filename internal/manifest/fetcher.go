package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
)

const (
	// MaxBodyBytes caps the manifest body; anything larger is rejected as malformed.
	MaxBodyBytes   = 8 << 20
	defaultTimeout = 30 * time.Second
)

// Result is a fetched manifest: every entry in document order plus the
// entries that lack a name or a path.
type Result struct {
	Components []model.Component
	Issues     []model.DataQualityIssue
}

// Fetcher retrieves the component manifest with a single GET request.
type Fetcher struct {
	client  *http.Client
	baseURL string
}

// NewFetcher creates a fetcher resolving relative endpoints against baseURL.
// A nil client selects NewHTTPClient with a 30s timeout.
func NewFetcher(client *http.Client, baseURL string) *Fetcher {
	if client == nil {
		client = NewHTTPClient(defaultTimeout)
	}
	return &Fetcher{client: client, baseURL: baseURL}
}

// Close releases idle connections held by the client.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// FetchComponents returns the manifest entries, malformed ones included.
func (f *Fetcher) FetchComponents(ctx context.Context, endpoint string) ([]model.Component, error) {
	res, err := f.Fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return res.Components, nil
}

// Fetch performs the request and validates the document shape. It never
// retries.
func (f *Fetcher) Fetch(ctx context.Context, endpoint string) (*Result, error) {
	target, err := f.resolve(endpoint)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	logger := ctxlog.FromContext(ctx).With("url", target)
	logger.Debug("Fetching component manifest.")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UnavailableError{Status: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, &UnavailableError{Status: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode), Err: err}
	}
	if len(body) > MaxBodyBytes {
		return nil, &MalformedError{Reason: fmt.Sprintf("body exceeds %d bytes", MaxBodyBytes)}
	}

	res, err := decode(body)
	if err != nil {
		return nil, err
	}

	logger.Info("Found components to test.", "count", len(res.Components))
	for _, issue := range res.Issues {
		logger.Warn("Component is missing required properties.",
			"index", issue.Index,
			"missing", issue.Missing,
			"name", issue.Component.Name,
			"path", issue.Component.Path,
		)
	}
	return res, nil
}

func (f *Fetcher) resolve(endpoint string) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if ref.IsAbs() || f.baseURL == "" {
		if !ref.IsAbs() {
			return "", fmt.Errorf("endpoint %q is relative and no base URL is set", endpoint)
		}
		return ref.String(), nil
	}
	base, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL %q: %w", f.baseURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

type document struct {
	Blocks *struct {
		Data json.RawMessage `json:"data"`
	} `json:"blocks"`
}

func decode(body []byte) (*Result, error) {
	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &MalformedError{Reason: "body is not a JSON object", Err: err}
	}
	if doc.Blocks == nil {
		return nil, &MalformedError{Reason: "missing blocks.data array"}
	}
	data := bytes.TrimSpace(doc.Blocks.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, &MalformedError{Reason: "missing blocks.data array"}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &MalformedError{Reason: "blocks.data is not an array", Err: err}
	}

	res := &Result{Components: make([]model.Component, 0, len(entries))}
	for i, raw := range entries {
		// Entries that are not objects, or whose fields are not strings,
		// become empty components and are reported like missing fields.
		var c model.Component
		if err := json.Unmarshal(raw, &c); err != nil {
			c = model.Component{}
		}
		res.Components = append(res.Components, c)
		if missing := c.Missing(); len(missing) > 0 {
			res.Issues = append(res.Issues, model.DataQualityIssue{Index: i, Component: c, Missing: missing})
		}
	}
	return res, nil
}
