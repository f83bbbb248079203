package whatsapp

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
	"time"
)

const defaultMaxMediaBytes = 32 << 20

// ErrMediaTooLarge is returned when an attachment exceeds the download limit.
var ErrMediaTooLarge = errors.New("media exceeds download limit")

// GatewayError is returned when the messaging gateway answers with a non-2xx status.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("whatsapp gateway returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the outbound messaging gateway.
type Client struct {
	sendURL       string
	token         string
	trustedHosts  map[string]struct{}
	maxMediaBytes int64
	httpClient    *http.Client
}

// NewClient creates a gateway client. The token is sent as a bearer credential
// to the gateway host only; see TrustMediaHosts.
func NewClient(sendURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		sendURL:       sendURL,
		token:         token,
		trustedHosts:  make(map[string]struct{}),
		maxMediaBytes: defaultMaxMediaBytes,
		httpClient:    &http.Client{Timeout: timeout},
	}
	if u, err := url.Parse(sendURL); err == nil && u.Host != "" {
		c.trustedHosts[strings.ToLower(u.Host)] = struct{}{}
	}
	return c
}

// TrustMediaHosts lists extra hosts ("host" or "host:port") that receive the
// bearer token on media downloads, e.g. a provider CDN that requires it.
func (c *Client) TrustMediaHosts(hosts ...string) *Client {
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			c.trustedHosts[h] = struct{}{}
		}
	}
	return c
}

type sendMessageRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SendMessage delivers a text message to a phone number. It returns a
// *GatewayError for non-2xx responses and a wrapped error for transport failures.
func (c *Client) SendMessage(ctx context.Context, phone, text string) error {
	body, err := json.Marshal(sendMessageRequest{Phone: phone, Message: text})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach whatsapp gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &GatewayError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// DownloadMedia fetches an attachment. The URL comes from an inbound payload,
// so the bearer token is only attached for trusted hosts. Bodies larger than
// the download limit fail with ErrMediaTooLarge. The caller must close the
// returned body.
func (c *Client) DownloadMedia(ctx context.Context, mediaURL string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build download request: %w", err)
	}
	if c.trusted(req.URL) {
		c.authorize(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download media: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, "", &GatewayError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if resp.ContentLength > c.maxMediaBytes {
		resp.Body.Close()
		return nil, "", ErrMediaTooLarge
	}

	return &limitedBody{rc: resp.Body, remaining: c.maxMediaBytes}, resp.Header.Get("Content-Type"), nil
}

func (c *Client) trusted(u *url.URL) bool {
	if _, ok := c.trustedHosts[strings.ToLower(u.Host)]; ok {
		return true
	}
	_, ok := c.trustedHosts[strings.ToLower(u.Hostname())]
	return ok
}

// limitedBody fails the read once more than remaining bytes arrive, so a
// partial upload is never mistaken for the whole attachment.
type limitedBody struct {
	rc        io.ReadCloser
	remaining int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if int64(len(p)) > b.remaining+1 {
		p = p[:b.remaining+1]
	}
	n, err := b.rc.Read(p)
	b.remaining -= int64(n)
	if b.remaining < 0 {
		return n, ErrMediaTooLarge
	}
	return n, err
}

func (b *limitedBody) Close() error {
	return b.rc.Close()
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
