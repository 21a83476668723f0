package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a typed HTTP client for the negotiation backend. All negotiation
// logic lives server-side; the client only moves data and surfaces errors.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient creates a client for the backend at baseURL. A zero timeout
// falls back to 30 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the backend base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health probes the backend's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", nil, "", nil)
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates with a form-encoded username/password pair and returns
// the access token. The token is not retained; callers decide where it goes.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var out loginResponse
	body := strings.NewReader(form.Encode())
	if err := c.doJSON(ctx, http.MethodPost, "/login", body, "application/x-www-form-urlencoded", &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &DecodeError{Body: "", Err: fmt.Errorf("login response missing access_token")}
	}
	return out.AccessToken, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates a new account with the given role and returns the
// backend's confirmation message.
func (c *Client) Register(ctx context.Context, username, password, role string) (string, error) {
	payload := map[string]string{"username": username, "password": password, "role": role}
	var out messageResponse
	if err := c.postJSON(ctx, "/register", payload, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// SubmitProducts submits the retailer's requirement list, which starts a
// negotiation session with every wholesaler.
func (c *Client) SubmitProducts(ctx context.Context, products []ProductRequest) (string, error) {
	payload := map[string][]ProductRequest{"products": products}
	var out messageResponse
	if err := c.postJSON(ctx, "/retailer/products", payload, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

type resultsResponse struct {
	Results []WholesalerResult `json:"results"`
}

// NegotiationResults fetches the retailer's current per-wholesaler offer
// sets.
func (c *Client) NegotiationResults(ctx context.Context) ([]WholesalerResult, error) {
	var out resultsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/retailer/negotiation_results", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

type negotiationsResponse struct {
	Negotiations []Negotiation `json:"negotiations"`
}

// Negotiations fetches the wholesaler's open negotiation sessions.
func (c *Client) Negotiations(ctx context.Context) ([]Negotiation, error) {
	var out negotiationsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/wholesaler/negotiations", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Negotiations, nil
}

type historyResponse struct {
	History []HistoryRecord `json:"history"`
}

// History fetches the wholesaler's finalized session records.
func (c *Client) History(ctx context.Context) ([]HistoryRecord, error) {
	var out historyResponse
	if err := c.doJSON(ctx, http.MethodGet, "/wholesaler/history", nil, "", &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// Chat fetches the transcript and status of one negotiation session.
func (c *Client) Chat(ctx context.Context, sessionID int) (ChatTranscript, error) {
	var out ChatTranscript
	path := fmt.Sprintf("/wholesaler/chat/%d", sessionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, "", &out); err != nil {
		return ChatTranscript{}, err
	}
	return out, nil
}

// SendChat submits one chat turn to a negotiation session.
func (c *Client) SendChat(ctx context.Context, sessionID int, message string) (ChatReply, error) {
	var out ChatReply
	path := fmt.Sprintf("/wholesaler/chat/%d", sessionID)
	if err := c.postJSON(ctx, path, map[string]string{"message": message}, &out); err != nil {
		return ChatReply{}, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, path, bytes.NewReader(raw), "application/json", out)
}

type detailResponse struct {
	Detail string `json:"detail"`
}

// doJSON issues one request and decodes the JSON response into out (which
// may be nil when the body is irrelevant). Non-2xx responses become
// *APIError with the backend's detail message, undecodable bodies become
// *DecodeError, and failures before a response arrives become
// *TransportError.
func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	LogDebug("%s %s", method, u)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &TransportError{Op: method, URL: u, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method, URL: u, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var d detailResponse
		if err := json.Unmarshal(raw, &d); err != nil || d.Detail == "" {
			d.Detail = "request failed"
		}
		return &APIError{Status: resp.StatusCode, Detail: d.Detail}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Body: string(raw), Err: err}
	}
	return nil
}
