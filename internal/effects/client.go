package effects

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"festive/internal/config"
)

// AcceptHeader mirrors what the hosted API expects from its own web client.
const AcceptHeader = "application/json, text/plain, */*"

// Endpoints lists the hosted API locations.
type Endpoints struct {
	Upload   string
	ImageGen string
	VideoGen string
	CDN      string
	Proxy    string
}

// EndpointsFromConfig copies endpoint URLs from the [api] config section.
func EndpointsFromConfig(api config.API) Endpoints {
	return Endpoints{
		Upload:   api.UploadURL,
		ImageGen: api.ImageGenURL,
		VideoGen: api.VideoGenURL,
		CDN:      api.CDNURL,
		Proxy:    api.ProxyURL,
	}
}

// Client talks to the hosted image-effects API.
type Client struct {
	endpoints  Endpoints
	userAgent  string
	httpClient *http.Client
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(agent)
	}
}

// WithClock overrides the time source used for cache-busting parameters.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a client for the supplied endpoints.
func New(endpoints Endpoints, opts ...Option) (*Client, error) {
	for name, value := range map[string]string{
		"upload":    endpoints.Upload,
		"image gen": endpoints.ImageGen,
		"video gen": endpoints.VideoGen,
		"cdn":       endpoints.CDN,
		"proxy":     endpoints.Proxy,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("effects: %s endpoint required", name)
		}
	}
	endpoints.Upload = strings.TrimRight(endpoints.Upload, "/")
	endpoints.ImageGen = strings.TrimRight(endpoints.ImageGen, "/")
	endpoints.VideoGen = strings.TrimRight(endpoints.VideoGen, "/")
	endpoints.CDN = strings.TrimRight(endpoints.CDN, "/")
	endpoints.Proxy = strings.TrimRight(endpoints.Proxy, "/")

	client := &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client from the [api] config section.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("effects: config required")
	}
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		WithUserAgent(cfg.API.UserAgent),
	}
	return New(EndpointsFromConfig(cfg.API), append(base, opts...)...)
}

// StatusError reports a non-2xx answer from the hosted API.
type StatusError struct {
	Operation  string
	StatusCode int
	Latency    time.Duration
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s returned %d (latency=%v)", e.Operation, e.StatusCode, e.Latency.Round(time.Millisecond))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// RequestUploadURL asks the API for a signed write location for fileName.
func (c *Client) RequestUploadURL(ctx context.Context, fileName string) (string, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return "", errors.New("file name must not be empty")
	}
	endpoint, err := url.Parse(c.endpoints.Upload)
	if err != nil {
		return "", fmt.Errorf("parse upload url: %w", err)
	}
	params := endpoint.Query()
	params.Set("fileName", fileName)
	endpoint.RawQuery = params.Encode()

	req, err := c.newRequest(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	resp, latency, err := c.do(req, "upload url request")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read signed url (latency=%v): %w", latency, err)
	}
	signed := strings.TrimSpace(string(body))
	if signed == "" {
		return "", fmt.Errorf("upload url request returned an empty signed url (latency=%v)", latency)
	}
	return signed, nil
}

// PutObject writes body to a signed URL with the given content type.
// size may be -1 when unknown.
func (c *Client) PutObject(ctx context.Context, signedURL string, body io.Reader, size int64, contentType string) error {
	req, err := c.newRequest(ctx, http.MethodPut, signedURL, body)
	if err != nil {
		return err
	}
	if size >= 0 {
		req.ContentLength = size
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, _, err := c.do(req, "upload")
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// CDNURL returns the public location of an uploaded file.
func (c *Client) CDNURL(fileName string) string {
	return c.endpoints.CDN + "/" + strings.TrimLeft(fileName, "/")
}

// SubmitRequest is the fixed job description posted to the generation endpoint.
type SubmitRequest struct {
	Model           string
	ToolType        string
	EffectID        string
	UserID          string
	RemoveWatermark bool
	IsPrivate       bool
	ImageURL        string
}

// IsVideo reports whether the request targets the video endpoint.
func (r SubmitRequest) IsVideo() bool {
	return r.Model == config.VideoEffectsModel
}

// MarshalJSON encodes imageUrl as a one-element array for video effects and
// as a bare string otherwise.
func (r SubmitRequest) MarshalJSON() ([]byte, error) {
	var image any = r.ImageURL
	if r.IsVideo() {
		image = []string{r.ImageURL}
	}
	return json.Marshal(struct {
		Model           string `json:"model"`
		ToolType        string `json:"toolType"`
		EffectID        string `json:"effectId"`
		UserID          string `json:"userId"`
		RemoveWatermark bool   `json:"removeWatermark"`
		IsPrivate       bool   `json:"isPrivate"`
		ImageURL        any    `json:"imageUrl"`
	}{
		Model:           r.Model,
		ToolType:        r.ToolType,
		EffectID:        r.EffectID,
		UserID:          r.UserID,
		RemoveWatermark: r.RemoveWatermark,
		IsPrivate:       r.IsPrivate,
		ImageURL:        image,
	})
}

// SubmitJob posts a generation job and returns its identifier.
func (c *Client) SubmitJob(ctx context.Context, request SubmitRequest) (string, error) {
	if strings.TrimSpace(request.ImageURL) == "" {
		return "", errors.New("image url must not be empty")
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("encode submit request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.generationBase(request.Model), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, latency, err := c.do(req, "job submit")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode submit response (latency=%v): %w", latency, err)
	}
	if strings.TrimSpace(decoded.JobID) == "" {
		return "", fmt.Errorf("submit response carried no jobId (latency=%v)", latency)
	}
	return decoded.JobID, nil
}

// JobStatus fetches the current status of a job.
func (c *Client) JobStatus(ctx context.Context, model, userID, jobID string) (*StatusResponse, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, errors.New("job id must not be empty")
	}
	endpoint := c.generationBase(model) + "/" + url.PathEscape(userID) + "/" + url.PathEscape(jobID) + "/status"
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, latency, err := c.do(req, "job status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode status response (latency=%v): %w", latency, err)
	}
	return &status, nil
}

// Media is a fetched result. The caller must close Body.
type Media struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// FetchViaProxy downloads target through the server-side download proxy.
func (c *Client) FetchViaProxy(ctx context.Context, target string) (*Media, error) {
	endpoint, err := url.Parse(c.endpoints.Proxy)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	params := endpoint.Query()
	params.Set("url", target)
	endpoint.RawQuery = params.Encode()
	return c.fetch(ctx, endpoint.String(), "proxy download")
}

// FetchDirect downloads target from its origin with a cache-busting
// t=<unix millis> parameter.
func (c *Client) FetchDirect(ctx context.Context, target string) (*Media, error) {
	return c.fetch(ctx, CacheBust(target, c.now()), "direct download")
}

// CacheBust appends t=<unix millis> to target, using & when it already has a query.
func CacheBust(target string, at time.Time) string {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "t=" + strconv.FormatInt(at.UnixMilli(), 10)
}

func (c *Client) fetch(ctx context.Context, target, operation string) (*Media, error) {
	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")
	resp, _, err := c.do(req, operation)
	if err != nil {
		return nil, err
	}
	return &Media{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

func (c *Client) generationBase(model string) string {
	if model == config.VideoEffectsModel {
		return c.endpoints.VideoGen
	}
	return c.endpoints.ImageGen
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", AcceptHeader)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// do executes req and turns non-2xx answers into a StatusError. On success the
// caller owns resp.Body.
func (c *Client) do(req *http.Request, operation string) (*http.Response, time.Duration, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, latency, fmt.Errorf("%s (latency=%v): %w", operation, latency.Round(time.Millisecond), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, latency, &StatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Latency:    latency,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	return resp, latency, nil
}
