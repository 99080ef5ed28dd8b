package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	// DefaultTokenURL is Reddit's OAuth2 token endpoint for the
	// client-credentials (application-only) grant.
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"

	// DefaultBaseURL is the authenticated API host. Listing paths mirror
	// the public site under this host.
	DefaultBaseURL = "https://oauth.reddit.com"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// maxPageSize is Reddit's cap on listing page size.
	maxPageSize = 100
)

// Config holds credentials and client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	// UserAgent identifies the app. Reddit throttles or rejects requests
	// with a generic one, so make it descriptive.
	UserAgent string
	// RequestsPerSecond throttles all API calls; zero means 1 rps, the
	// free-tier guidance for app-only clients.
	RequestsPerSecond float64
	Burst             int
	// Exclude drops link posts whose target URL matches any of these
	// globs (matched against "host/path").
	Exclude []string
	// BaseURL and TokenURL override the public endpoints in tests.
	BaseURL  string
	TokenURL string
}

// Client is an application-only Reddit API client. It fetches OAuth2 tokens
// with the client-credentials grant, stamps every request with the
// configured user agent and throttles calls through a shared limiter. Safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	exclude    []string
}

// New creates a Client from the given config.
func New(cfg Config) *Client {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	// The user agent must reach the token endpoint too, so it is stamped
	// below the oauth2 transport.
	base := &http.Client{
		Timeout: DefaultTimeout,
		Transport: &userAgentTransport{
			agent: cfg.UserAgent,
			next:  http.DefaultTransport,
		},
	}
	authCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := cc.Client(authCtx)
	httpClient.Timeout = DefaultTimeout

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		exclude:    cfg.Exclude,
	}
}

// userAgentTransport stamps the configured User-Agent on every request.
type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(clone)
}

// get performs a throttled GET against the API and decodes the JSON
// response into v.
func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	// Ask for plain JSON instead of HTML-escaped bodies.
	params.Set("raw_json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("reddit returned %d for %s: %s (check reddit.client_id and reddit.client_secret)", resp.StatusCode, path, msg)
		}
		return fmt.Errorf("reddit returned %d for %s: %s", resp.StatusCode, path, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

// Ping verifies credentials and connectivity with a one-item listing.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("limit", "1")
	var l listing
	return c.get(ctx, "/r/all/hot", params, &l)
}
