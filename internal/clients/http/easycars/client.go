package easycars

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/oapi-codegen/runtime"
)

const (
	EnvironmentTest       = "Test"
	EnvironmentProduction = "Production"

	DefaultTestBaseURL       = "https://testmy.easycars.com.au/TestECService"
	DefaultProductionBaseURL = "https://my.easycars.net.au/ECService"

	defaultTokenTTL = 50 * time.Minute
	tokenSkew       = 30 * time.Second
	maxBodyBytes    = 8 << 20
)

// Client talks to the EasyCars ECService API.
type Client struct {
	httpClient *http.Client
	baseURLs   map[string]string
	now        func() time.Time

	mu     sync.Mutex
	tokens map[string]cachedToken
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithBaseURL points an environment at a different host.
func WithBaseURL(environment, baseURL string) Option {
	return func(c *Client) {
		baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if baseURL != "" {
			c.baseURLs[normalizeEnvironment(environment)] = baseURL
		}
	}
}

// WithClock injects the time source used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient instantiates the client with sane defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURLs: map[string]string{
			EnvironmentTest:       DefaultTestBaseURL,
			EnvironmentProduction: DefaultProductionBaseURL,
		},
		now:    time.Now,
		tokens: make(map[string]cachedToken),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// GetAdvertisementStocks lists every advertised stock item for the account, optionally filtered by yard.
func (c *Client) GetAdvertisementStocks(ctx context.Context, creds Credentials) ([]StockItem, error) {
	const op = "GetAdvertisementStocks"
	query := url.Values{}
	if err := addQueryParams(query, map[string]string{
		"AccountNumber": creds.AccountNumber,
		"AccountSecret": creds.AccountSecret,
		"YardCode":      creds.YardCode,
	}); err != nil {
		return nil, err
	}
	var resp StockListResponse
	if _, err := c.do(ctx, creds, op, http.MethodGet, "/StockService/GetAdvertisementStocks", query, nil, &resp); err != nil {
		return nil, err
	}
	if err := classifyEnvelope(op, resp.Envelope); err != nil {
		return nil, err
	}
	return resp.Stocks, nil
}

// CreateLead registers a new lead and returns the assigned identifiers.
func (c *Client) CreateLead(ctx context.Context, creds Credentials, req CreateLeadRequest) (*CreateLeadResponse, error) {
	const op = "CreateLead"
	req.AccountNumber = creds.AccountNumber
	req.AccountSecret = creds.AccountSecret
	var resp CreateLeadResponse
	if _, err := c.do(ctx, creds, op, http.MethodPost, "/LeadService/CreateLead", nil, req, &resp); err != nil {
		return nil, err
	}
	if err := classifyEnvelope(op, resp.Envelope); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.LeadNumber) == "" {
		return nil, &APIError{Operation: op, StatusCode: http.StatusOK, Message: "response did not include a lead number"}
	}
	return &resp, nil
}

// UpdateLead pushes changes to an existing remote lead.
func (c *Client) UpdateLead(ctx context.Context, creds Credentials, req UpdateLeadRequest) (*UpdateLeadResponse, error) {
	const op = "UpdateLead"
	if strings.TrimSpace(req.LeadNumber) == "" {
		return nil, errors.New("easycars lead number is required")
	}
	req.AccountNumber = creds.AccountNumber
	req.AccountSecret = creds.AccountSecret
	var resp UpdateLeadResponse
	if _, err := c.do(ctx, creds, op, http.MethodPost, "/LeadService/UpdateLead", nil, req, &resp); err != nil {
		return nil, err
	}
	if err := classifyEnvelope(op, resp.Envelope); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetLeadDetail fetches one remote lead by number.
func (c *Client) GetLeadDetail(ctx context.Context, creds Credentials, leadNumber string) (*LeadDetailResponse, error) {
	const op = "GetLeadDetail"
	leadNumber = strings.TrimSpace(leadNumber)
	if leadNumber == "" {
		return nil, errors.New("easycars lead number is required")
	}
	query := url.Values{}
	if err := addQueryParams(query, map[string]string{
		"AccountNumber": creds.AccountNumber,
		"AccountSecret": creds.AccountSecret,
		"LeadNumber":    leadNumber,
	}); err != nil {
		return nil, err
	}
	var resp LeadDetailResponse
	raw, err := c.do(ctx, creds, op, http.MethodGet, "/LeadService/GetLeadDetail", query, nil, &resp)
	if err != nil {
		return nil, err
	}
	if err := classifyEnvelope(op, resp.Envelope); err != nil {
		return nil, err
	}
	resp.Raw = json.RawMessage(raw)
	return &resp, nil
}

// do sends an authenticated request, refreshing the token once on 401.
func (c *Client) do(ctx context.Context, creds Credentials, op, method, path string, query url.Values, body, out any) ([]byte, error) {
	raw, status, err := c.send(ctx, creds, op, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		c.invalidateToken(creds)
		raw, status, err = c.send(ctx, creds, op, method, path, query, body)
		if err != nil {
			return nil, err
		}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, classifyStatus(op, status, bodyMessage(raw, http.StatusText(status)))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("decode easycars %s response: %w", op, err)
		}
	}
	return raw, nil
}

func (c *Client) send(ctx context.Context, creds Credentials, op, method, path string, query url.Values, body any) ([]byte, int, error) {
	token, err := c.token(ctx, creds)
	if err != nil {
		return nil, 0, err
	}
	req, err := c.newRequest(ctx, creds, method, path, query, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build easycars %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.execute(req, op)
}

func (c *Client) token(ctx context.Context, creds Credentials) (string, error) {
	const op = "GetToken"
	key := tokenKey(creds)
	c.mu.Lock()
	cached, ok := c.tokens[key]
	c.mu.Unlock()
	if ok && c.now().Before(cached.expiresAt) {
		return cached.value, nil
	}

	req, err := c.newRequest(ctx, creds, http.MethodPost, "/GetToken", nil, tokenRequest{
		PublicID:  creds.ClientID,
		SecretKey: creds.ClientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("build easycars %s request: %w", op, err)
	}
	raw, status, err := c.execute(req, op)
	if err != nil {
		return "", err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", classifyStatus(op, status, bodyMessage(raw, http.StatusText(status)))
	}
	var resp tokenResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode easycars %s response: %w", op, err)
	}
	if err := classifyEnvelope(op, resp.Envelope); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Token) == "" {
		return "", &APIError{Operation: op, StatusCode: status, Message: "empty token"}
	}
	ttl := defaultTokenTTL
	if resp.ExpiresIn > 0 {
		ttl = time.Duration(resp.ExpiresIn) * time.Second
	}
	if ttl > tokenSkew {
		ttl -= tokenSkew
	}
	c.mu.Lock()
	c.tokens[key] = cachedToken{value: resp.Token, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return resp.Token, nil
}

func (c *Client) invalidateToken(creds Credentials) {
	c.mu.Lock()
	delete(c.tokens, tokenKey(creds))
	c.mu.Unlock()
}

func (c *Client) newRequest(ctx context.Context, creds Credentials, method, path string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL(creds.Environment) + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) execute(req *http.Request, op string) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, classifyTransport(op, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, classifyTransport(op, err)
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) baseURL(environment string) string {
	if base, ok := c.baseURLs[normalizeEnvironment(environment)]; ok {
		return base
	}
	return c.baseURLs[EnvironmentTest]
}

func normalizeEnvironment(environment string) string {
	if strings.EqualFold(strings.TrimSpace(environment), EnvironmentProduction) {
		return EnvironmentProduction
	}
	return EnvironmentTest
}

func tokenKey(creds Credentials) string {
	return normalizeEnvironment(creds.Environment) + "|" + creds.ClientID
}

// addQueryParams serializes non-empty values with form style, matching the generated clients.
func addQueryParams(values url.Values, params map[string]string) error {
	for name, value := range params {
		if value == "" {
			continue
		}
		frag, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
		if err != nil {
			return fmt.Errorf("encode query parameter %s: %w", name, err)
		}
		parsed, err := url.ParseQuery(frag)
		if err != nil {
			return fmt.Errorf("parse query parameter %s: %w", name, err)
		}
		for k, vs := range parsed {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
	}
	return nil
}

func bodyMessage(raw []byte, fallback string) string {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if msg := strings.TrimSpace(env.ResponseMessage); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" && len(msg) < 256 {
		return msg
	}
	return fallback
}
