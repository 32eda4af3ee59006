package gist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const acceptHeader = "application/vnd.github.v3+json"

// Client fetches the calendar document from a single GitHub Gist.
type Client struct {
	apiBase    string
	gistID     string
	fileName   string
	token      string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(apiBase, gistID, fileName, token, userAgent string, timeout time.Duration, httpClient *http.Client) *Client {
	return &Client{
		apiBase:    apiBase,
		gistID:     gistID,
		fileName:   fileName,
		token:      token,
		userAgent:  userAgent,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// FetchDocument retrieves the gist and unwraps the named file's content
// string. The returned bytes are the embedded calendar payload, still JSON;
// parsing it is the caller's job.
func (c *Client) FetchDocument(ctx context.Context) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/gists/%s", c.apiBase, c.gistID)
	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &FetchError{Kind: ErrorTimeout, Err: err}
		}
		return nil, &FetchError{Kind: ErrorNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: ErrorHTTPStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: ErrorNetwork, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("malformed gist envelope: %w", err)
	}

	file, ok := env.Files[c.fileName]
	if !ok {
		return nil, fmt.Errorf("gist has no file %q", c.fileName)
	}

	return []byte(file.Content), nil
}

// LatestAppVersion fetches the document and reads the published appVersion
// number from it. Used by the update check; the calendar pipeline ignores
// this field.
func (c *Client) LatestAppVersion(ctx context.Context) (int, error) {
	content, err := c.FetchDocument(ctx)
	if err != nil {
		return 0, err
	}

	var payload struct {
		AppVersion int `json:"appVersion"`
	}
	if err := json.Unmarshal(content, &payload); err != nil {
		return 0, fmt.Errorf("malformed version payload: %w", err)
	}

	if payload.AppVersion == 0 {
		return 1, nil
	}
	return payload.AppVersion, nil
}
