// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/arteusai/council-tui/internal/council"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the number of attempts for transient failures.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize limits response bodies to prevent memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// defaultRequestsPerSecond paces outbound calls so a busy sidebar
	// refresh cannot hammer the backend.
	defaultRequestsPerSecond = 8
)

var (
	// Shared HTTP client with connection pooling for all API requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for SSE requests. No client timeout:
	// stream lifetime is controlled via context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// AUTH MODE AND CREDENTIALS
// =============================================================================

// AuthMode selects how credentials are carried on the wire. Both modes exist
// across backend deployments and are configured explicitly, never merged.
type AuthMode int

const (
	// AuthModeToken sends "Authorization: Bearer <token>".
	AuthModeToken AuthMode = iota
	// AuthModeSession sends "X-Session-Id: <id>".
	AuthModeSession
)

// ParseAuthMode maps a config string to an AuthMode. Unknown values fall
// back to token mode.
func ParseAuthMode(s string) AuthMode {
	if strings.EqualFold(strings.TrimSpace(s), "session") {
		return AuthModeSession
	}
	return AuthModeToken
}

// String returns the config name of the mode.
func (m AuthMode) String() string {
	if m == AuthModeSession {
		return "session"
	}
	return "token"
}

// Credentials is the persisted auth state read before each request.
type Credentials struct {
	Token     string
	SessionID string
}

// CredentialSource supplies credentials from persistent local storage.
// Implementations must be cheap to call; the client reads them per request
// so an external login/logout takes effect immediately.
type CredentialSource interface {
	Credentials() (Credentials, error)
}

// StaticCredentials is a CredentialSource with fixed values, used by the
// CLI's one-shot commands and by tests.
type StaticCredentials Credentials

// Credentials implements CredentialSource.
func (s StaticCredentials) Credentials() (Credentials, error) {
	return Credentials(s), nil
}

// =============================================================================
// ERRORS
// =============================================================================

// Sentinel errors for common backend failures.
var (
	// ErrUnauthorized indicates missing or rejected credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = errors.New("rate limited")
)

// APIError is a non-2xx response carrying the backend's detail message.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// errorDetail is the FastAPI-style error body {"detail": "..."}.
type errorDetail struct {
	Detail string `json:"detail"`
}

// =============================================================================
// BASE URL RESOLUTION
// =============================================================================

// ResolveBaseURL resolves the backend base URL once at startup. An explicit
// override wins; otherwise the origin is combined with an optional sub-path
// so the backend can be served under a non-root path. The result never ends
// in a slash.
func ResolveBaseURL(override, origin, subPath string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return normalizeBaseURL(override)
	}
	if strings.TrimSpace(origin) == "" {
		return "", errors.New("no backend URL configured")
	}
	base, err := normalizeBaseURL(origin)
	if err != nil {
		return "", err
	}
	return base + normalizeSubPath(subPath), nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid backend URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid backend URL %q: scheme must be http or https", raw)
	}
	return raw, nil
}

// normalizeSubPath returns "" for empty or "/", otherwise "/<path>" with no
// trailing slash.
func normalizeSubPath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the council backend. Construct with NewClient, then chain
// With* options.
type Client struct {
	baseURL    string
	authMode   AuthMode
	creds      CredentialSource
	httpClient *http.Client
	streaming  *http.Client
	limiter    *rate.Limiter
	maxRetries int
	userAgent  string
}

// NewClient creates a client for the given resolved base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authMode:   AuthModeToken,
		httpClient: sharedHTTPClient,
		streaming:  sharedStreamingClient,
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultRequestsPerSecond),
		maxRetries: DefaultMaxRetries,
		userAgent:  "council-tui/1.0",
	}
}

// WithAuthMode selects token or session auth.
func (c *Client) WithAuthMode(mode AuthMode) *Client {
	c.authMode = mode
	return c
}

// WithCredentials sets the credential source. A nil source means requests
// go out unauthenticated.
func (c *Client) WithCredentials(src CredentialSource) *Client {
	c.creds = src
	return c
}

// WithHTTPClient overrides the HTTP client, used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	c.streaming = hc
	return c
}

// WithRateLimit overrides the request pacing.
func (c *Client) WithRateLimit(perSecond float64, burst int) *Client {
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return c
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// attachAuth adds the auth header for the configured mode. Attachment fails
// open: if the credential source is missing, errors, or holds no value, the
// header is silently omitted and the backend decides whether to reject.
func (c *Client) attachAuth(req *http.Request) {
	if c.creds == nil {
		return
	}
	creds, err := c.creds.Credentials()
	if err != nil {
		log.Printf("api: credential source unavailable, sending unauthenticated: %v", err)
		return
	}
	switch c.authMode {
	case AuthModeSession:
		if creds.SessionID != "" {
			req.Header.Set("X-Session-Id", creds.SessionID)
		}
	default:
		if creds.Token != "" {
			req.Header.Set("Authorization", "Bearer "+creds.Token)
		}
	}
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do performs one JSON request with pacing, retries on 5xx, and decodes the
// response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoffDelay(attempt - 1)):
			}
		}

		req, err := c.newRequest(ctx, method, path, payload)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		respBody, readErr := readResponse(resp)
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = handleErrorResponse(resp.StatusCode, respBody)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return handleErrorResponse(resp.StatusCode, respBody)
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload []byte) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	// Request id for correlating client logs with backend traces
	req.Header.Set("X-Request-Id", uuid.NewString())
	c.attachAuth(req)
	return req, nil
}

// readResponse reads the body with the size limit applied.
func readResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// handleErrorResponse maps a non-2xx response to an error carrying the
// backend's detail field when present.
func handleErrorResponse(statusCode int, body []byte) error {
	detail := ""
	var parsed errorDetail
	if err := json.Unmarshal(body, &parsed); err == nil {
		detail = parsed.Detail
	}
	if detail == "" {
		detail = strings.TrimSpace(string(body))
		if len(detail) > 200 {
			detail = detail[:200]
		}
	}

	apiErr := &APIError{Status: statusCode, Detail: detail}
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Error())
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Error())
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Error())
	default:
		return apiErr
	}
}

// backoffDelay returns the exponential backoff for a retry attempt.
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// =============================================================================
// SERVER METADATA
// =============================================================================

// GetServerConfig fetches the deployment configuration.
func (c *Client) GetServerConfig(ctx context.Context) (*ServerConfig, error) {
	var out ServerConfig
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListModels fetches the council and chairman model catalog.
func (c *Client) ListModels(ctx context.Context) (*ModelCatalog, error) {
	var out ModelCatalog
	if err := c.do(ctx, http.MethodGet, "/api/models", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPersonalizationTemplates fetches the personal-prompt template catalog.
func (c *Client) GetPersonalizationTemplates(ctx context.Context) ([]PromptTemplate, error) {
	var out []PromptTemplate
	if err := c.do(ctx, http.MethodGet, "/api/personalization-templates", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetIdentityTemplates fetches the council-identity template catalog.
func (c *Client) GetIdentityTemplates(ctx context.Context) ([]PromptTemplate, error) {
	var out []PromptTemplate
	if err := c.do(ctx, http.MethodGet, "/api/council-identity-templates", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// =============================================================================
// AUTH
// =============================================================================

// Login authenticates with email and password, returning the bearer token.
// The caller is responsible for persisting it to the credential store.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the current authentication state.
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterLead registers a contact in leads-mode deployments and returns a
// session token.
func (c *Client) RegisterLead(ctx context.Context, req LeadRegisterRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/leads/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeadMe returns the current lead session state.
func (c *Client) LeadMe(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/leads/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// ListConversations fetches conversation summaries, newest first.
func (c *Client) ListConversations(ctx context.Context) ([]council.ConversationMeta, error) {
	var out []council.ConversationMeta
	if err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateConversation creates an empty conversation.
func (c *Client) CreateConversation(ctx context.Context) (*council.Conversation, error) {
	var out council.Conversation
	if err := c.do(ctx, http.MethodPost, "/api/conversations", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetConversation fetches one full conversation.
func (c *Client) GetConversation(ctx context.Context, id string) (*council.Conversation, error) {
	var out council.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/conversations/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConversation deletes one conversation.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/conversations/"+url.PathEscape(id), nil, nil)
}

// DeleteAllConversations deletes every conversation for the current session.
func (c *Client) DeleteAllConversations(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/conversations", nil, nil)
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetCouncilSettings fetches the user's personalization settings.
func (c *Client) GetCouncilSettings(ctx context.Context) (*CouncilSettings, error) {
	var out CouncilSettings
	if err := c.do(ctx, http.MethodGet, "/api/user/council-settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetCouncilSettings stores the user's personalization settings.
func (c *Client) SetCouncilSettings(ctx context.Context, settings CouncilSettings) (*CouncilSettings, error) {
	var out CouncilSettings
	if err := c.do(ctx, http.MethodPost, "/api/user/council-settings", settings, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// MESSAGING
// =============================================================================

// SendMessage runs the full council synchronously and returns the complete
// staged result.
func (c *Client) SendMessage(ctx context.Context, conversationID string, req SendMessageRequest) (*SendMessageResponse, error) {
	var out SendMessageResponse
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/message"
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
