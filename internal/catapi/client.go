package catapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders for image.Decode
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ImageSource defines the calls the rest of whisker makes against the API.
// It is implemented by *Client and can be replaced in tests.
type ImageSource interface {
	SearchImages(ctx context.Context, query SearchQuery) ([]Image, error)
	Breeds(ctx context.Context) ([]Breed, error)
	FetchPicture(ctx context.Context, rawURL string) (Picture, error)
}

// Ensure Client implements ImageSource at compile time.
var _ ImageSource = (*Client)(nil)

const (
	// DefaultBaseURL is TheCatAPI v1 root.
	DefaultBaseURL         = "https://api.thecatapi.com/v1"
	defaultUserAgent       = "whisker/0.1"
	defaultRequestTimeout  = 15 * time.Second
	defaultMaxPictureBytes = 8 << 20
	apiKeyHeader           = "x-api-key"

	// MaxSearchLimit is the largest page the search endpoint accepts.
	MaxSearchLimit = 100
)

// Options configure a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	UserAgent       string
	MaxPictureBytes int64
	HTTPClient      *http.Client
}

// Client talks to TheCatAPI over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL         *url.URL
	http            *http.Client
	userAgent       string
	apiKey          string
	maxPictureBytes int64
}

// NewClient builds a Client. A malformed base URL is reported as KindInvalidRequest.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, invalidRequest("base url", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxBytes := opts.MaxPictureBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxPictureBytes
	}
	return &Client{
		baseURL:         base,
		http:            httpClient,
		userAgent:       userAgent,
		apiKey:          strings.TrimSpace(opts.APIKey),
		maxPictureBytes: maxBytes,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Query describes one typed API call: the path below the base URL, its
// parameters, and an optional check run on the decoded value.
type Query[T any] struct {
	Path   string
	Params url.Values
	Check  func(T) error
}

// URL resolves the query against base. Every parameter must carry a value.
func (q Query[T]) URL(base *url.URL) (*url.URL, error) {
	if base == nil {
		return nil, fmt.Errorf("base url is nil")
	}
	path := strings.TrimSpace(q.Path)
	if path == "" {
		return nil, fmt.Errorf("path is empty")
	}
	for name, values := range q.Params {
		if len(values) == 0 {
			return nil, fmt.Errorf("parameter %q has no value", name)
		}
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				return nil, fmt.Errorf("parameter %q has an empty value", name)
			}
		}
	}
	u := base.JoinPath(path)
	u.RawQuery = q.Params.Encode()
	return u, nil
}

// Do performs a GET for q and decodes the JSON body into T.
func Do[T any](ctx context.Context, c *Client, q Query[T]) (T, error) {
	var zero T
	if c == nil {
		return zero, invalidRequest(q.Path, fmt.Errorf("client is nil"))
	}
	reqURL, err := q.URL(c.baseURL)
	if err != nil {
		return zero, invalidRequest(q.Path, err)
	}
	op := reqURL.Path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return zero, invalidRequest(op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	c.setCommonHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, transportFailure(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return zero, httpStatus(op, resp.StatusCode)
	}

	var payload T
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, transportFailure(op, err)
		}
		return zero, decodeFailure(op, err)
	}
	if q.Check != nil {
		if err := q.Check(payload); err != nil {
			return zero, decodeFailure(op, err)
		}
	}
	return payload, nil
}

// SearchQueryFor builds the typed query behind SearchImages.
func SearchQueryFor(query SearchQuery) (Query[[]Image], error) {
	if query.Limit < 1 || query.Limit > MaxSearchLimit {
		return Query[[]Image]{}, fmt.Errorf("limit %d out of range 1..%d", query.Limit, MaxSearchLimit)
	}
	values := url.Values{}
	values.Set("limit", strconv.Itoa(query.Limit))
	if breed := strings.TrimSpace(query.BreedID); breed != "" {
		values.Set("breed_ids", breed)
	}
	if query.HasBreeds {
		values.Set("has_breeds", "1")
	}
	if order := strings.ToUpper(strings.TrimSpace(query.Order)); order != "" {
		switch order {
		case "RANDOM", "ASC", "DESC":
			values.Set("order", order)
		default:
			return Query[[]Image]{}, fmt.Errorf("unknown order %q", query.Order)
		}
	}
	return Query[[]Image]{Path: "/images/search", Params: values, Check: checkImages}, nil
}

// SearchImages retrieves one page of image records.
func (c *Client) SearchImages(ctx context.Context, query SearchQuery) ([]Image, error) {
	q, err := SearchQueryFor(query)
	if err != nil {
		return nil, invalidRequest("/images/search", err)
	}
	return Do(ctx, c, q)
}

// Breeds retrieves the breed catalogue.
func (c *Client) Breeds(ctx context.Context) ([]Breed, error) {
	return Do(ctx, c, Query[[]Breed]{Path: "/breeds", Check: checkBreeds})
}

// FetchPicture downloads and decodes the image at rawURL.
func (c *Client) FetchPicture(ctx context.Context, rawURL string) (Picture, error) {
	if c == nil {
		return Picture{}, invalidRequest(rawURL, fmt.Errorf("client is nil"))
	}
	target, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Picture{}, invalidRequest(rawURL, fmt.Errorf("parse url: %w", err))
	}
	if (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return Picture{}, invalidRequest(rawURL, fmt.Errorf("url must be absolute http(s)"))
	}
	op := target.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, op, nil)
	if err != nil {
		return Picture{}, invalidRequest(op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "image/*")
	// The key is only sent back to the API host, never to the image CDN.
	if target.Host == c.baseURL.Host {
		c.setCommonHeaders(req)
	} else {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Picture{}, transportFailure(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Picture{}, httpStatus(op, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxPictureBytes+1))
	if err != nil {
		return Picture{}, transportFailure(op, fmt.Errorf("read body: %w", err))
	}
	if len(body) == 0 {
		return Picture{}, noData(op)
	}
	if int64(len(body)) > c.maxPictureBytes {
		return Picture{}, decodeFailure(op, fmt.Errorf("image exceeds %d bytes", c.maxPictureBytes))
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return Picture{}, decodeFailure(op, err)
	}
	return Picture{URL: op, Format: format, Bytes: len(body), Image: img}, nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
}

func checkImages(images []Image) error {
	for i, img := range images {
		if strings.TrimSpace(img.ID) == "" {
			return fmt.Errorf("record %d: missing id", i)
		}
		if strings.TrimSpace(img.URL) == "" {
			return fmt.Errorf("record %d (%s): missing url", i, img.ID)
		}
	}
	return nil
}

func checkBreeds(breeds []Breed) error {
	for i, b := range breeds {
		if strings.TrimSpace(b.ID) == "" {
			return fmt.Errorf("breed %d: missing id", i)
		}
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api_base %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api_base %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
