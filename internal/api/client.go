package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/config"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/http"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/models"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/ratelimit"
)

const (
	mediaType   = "application/vnd.api+json"
	exportsPath = "/api/exports"

	metricsWindow = 30 * time.Second
)

// apiMetrics tracks API usage statistics
type apiMetrics struct {
	sync.Mutex
	totalCalls    int64
	windowStart   time.Time
	callsInWindow int64
}

// Client talks to one organization's API with a single bearer token.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	budgets    ratelimit.Budgets
	limiter    *ratelimit.RateLimiter

	tokenMu     sync.RWMutex
	accessToken string

	metrics *apiMetrics
}

// NewClient creates a new API client
func NewClient(cfg *config.Config) (*Client, error) {
	baseURL := cfg.APIBaseURL()
	if cfg.BaseURL == "" && cfg.Organization == "" {
		return nil, fmt.Errorf("API base URL is empty: organization slug is not configured")
	}

	httpClient, err := http.ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	return &Client{
		httpClient:  http.WithRetries(httpClient, cfg.HTTPRetries),
		baseURL:     baseURL,
		budgets:     cfg.Budgets,
		limiter:     ratelimit.NewBudgetLimiter(cfg.Budgets),
		accessToken: cfg.AccessToken,
		metrics:     &apiMetrics{windowStart: time.Now()},
	}, nil
}

// BaseURL returns the organization endpoint this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetAccessToken replaces the bearer token used by subsequent requests.
func (c *Client) SetAccessToken(token string) {
	c.tokenMu.Lock()
	c.accessToken = token
	c.tokenMu.Unlock()
}

// AccessToken returns the current bearer token.
func (c *Client) AccessToken() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.accessToken
}

func (c *Client) trackCall() {
	c.metrics.Lock()
	defer c.metrics.Unlock()

	c.metrics.totalCalls++
	c.metrics.callsInWindow++

	if elapsed := time.Since(c.metrics.windowStart); elapsed >= metricsWindow {
		reqPerSec := float64(c.metrics.callsInWindow) / elapsed.Seconds()
		log.Debug().
			Float64("req_per_sec", reqPerSec).
			Float64("avg_limit_per_sec", c.budgets.Average.RatePerSec()).
			Int64("total_calls", c.metrics.totalCalls).
			Msg("API usage")

		c.metrics.callsInWindow = 0
		c.metrics.windowStart = time.Now()
	}
}

// doRequest performs an HTTP request with authentication and rate limiting
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*nethttp.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}
	c.trackCall()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + encodeQuery(query)
	}
	req, err := nethttp.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.AccessToken())
	req.Header.Set("Accept", mediaType)
	if body != nil {
		req.Header.Set("Content-Type", mediaType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", path).Msg("API call failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode == nethttp.StatusTooManyRequests {
		// pacing is fixed, so a 429 means the budgets in config are wrong
		log.Warn().
			Str("method", method).
			Str("path", path).
			Str("retry_after", resp.Header.Get("Retry-After")).
			Msg("THROTTLED: rate limit exceeded, check the api section of the config file")
	}

	return resp, nil
}

// encodeQuery is url.Values.Encode without escaping the JSON:API brackets.
func encodeQuery(v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, val := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(strings.NewReplacer("%5B", "[", "%5D", "]").Replace(url.QueryEscape(k)))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}
	return b.String()
}

// decodeError turns a non-2xx response into *Error.
func decodeError(resp *nethttp.Response, method, path string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	apiErr := &Error{Method: method, Path: path, StatusCode: resp.StatusCode}

	var doc struct {
		Errors []ErrorObject `json:"errors"`
	}
	if err := json.Unmarshal(body, &doc); err == nil && len(doc.Errors) > 0 {
		apiErr.Errors = doc.Errors
	} else {
		apiErr.Body = strings.TrimSpace(string(body))
	}
	return apiErr
}

type exportDocument struct {
	Data models.Export `json:"data"`
}

type exportListDocument struct {
	Data []models.Export `json:"data"`
	Meta models.PageMeta `json:"meta"`
}

type createDocument struct {
	Data struct {
		Type       string              `json:"type"`
		Attributes models.ExportCreate `json:"attributes"`
	} `json:"data"`
}

// CreateExport starts a new export job.
func (c *Client) CreateExport(ctx context.Context, spec models.ExportCreate) (*models.Export, error) {
	var doc createDocument
	doc.Data.Type = models.ExportResourceType
	doc.Data.Attributes = spec

	resp, err := c.doRequest(ctx, nethttp.MethodPost, exportsPath, nil, doc)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusCreated && resp.StatusCode != nethttp.StatusOK {
		return nil, decodeError(resp, nethttp.MethodPost, exportsPath)
	}

	var out exportDocument
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return &out.Data, nil
}

// RetrieveExport fetches the current state of an export job.
func (c *Client) RetrieveExport(ctx context.Context, id string) (*models.Export, error) {
	if id == "" {
		return nil, errors.New("export id is required")
	}
	path := exportsPath + "/" + url.PathEscape(id)

	resp, err := c.doRequest(ctx, nethttp.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, decodeError(resp, nethttp.MethodGet, path)
	}

	var out exportDocument
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return &out.Data, nil
}

// ListExports fetches one page of export jobs.
func (c *Client) ListExports(ctx context.Context, params models.ListParams) (*models.ExportPage, error) {
	page := params.PageNumber
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	query.Set("page[number]", strconv.Itoa(page))
	if params.PageSize > 0 {
		query.Set("page[size]", strconv.Itoa(params.PageSize))
	}
	if params.Sort != "" {
		query.Set("sort", params.Sort)
	}
	for k, v := range params.Filters {
		query.Set("filter[q]["+k+"]", v)
	}

	resp, err := c.doRequest(ctx, nethttp.MethodGet, exportsPath, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, decodeError(resp, nethttp.MethodGet, exportsPath)
	}

	var out exportListDocument
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode export list: %w", err)
	}

	return &models.ExportPage{
		Items:       out.Data,
		CurrentPage: page,
		RecordCount: out.Meta.RecordCount,
		PageCount:   out.Meta.PageCount,
	}, nil
}
