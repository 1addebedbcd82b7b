package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
)

const postmarkURL = "https://api.postmarkapp.com/email"

// Email sends notifications through the Postmark API.
type Email struct {
	serverToken string
	fromEmail   string
	toEmail     string
	httpClient  *http.Client
}

type Option func(*Email)

func WithHTTPClient(c *http.Client) Option {
	return func(e *Email) {
		e.httpClient = c
	}
}

func NewEmail(serverToken, fromEmail, toEmail string, opts ...Option) *Email {
	e := &Email{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		toEmail:     toEmail,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Configured returns true if the server token is set.
func (e *Email) Configured() bool {
	return e.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
	Tag      string `json:"Tag,omitempty"`
}

func (e *Email) Notify(ctx context.Context, msg Message) error {
	if !e.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	payload := postmarkEmail{
		From:     e.fromEmail,
		To:       e.toEmail,
		Subject:  msg.Subject,
		HtmlBody: "<p>" + strings.ReplaceAll(html.EscapeString(msg.Body), "\n", "<br>") + "</p>",
		TextBody: msg.Body,
		Tag:      string(msg.Kind),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", postmarkURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", e.serverToken)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
