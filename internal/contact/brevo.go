package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"
)

const defaultBrevoURL = "https://api.brevo.com/v3"

type BrevoConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Brevo sends mail through the Brevo transactional email API.
type Brevo struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewBrevo(cfg BrevoConfig) *Brevo {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBrevoURL
	}
	return &Brevo{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
	}
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmail struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	ReplyTo     *brevoContact  `json:"replyTo,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	TextContent string         `json:"textContent,omitempty"`
}

func toBrevo(a mail.Address) brevoContact {
	return brevoContact{Email: a.Address, Name: a.Name}
}

func (b *Brevo) Send(ctx context.Context, msg Message) error {
	payload := brevoEmail{
		Sender:      toBrevo(msg.From),
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	}
	for _, to := range msg.To {
		payload.To = append(payload.To, toBrevo(to))
	}
	if msg.ReplyTo != nil {
		r := toBrevo(*msg.ReplyTo)
		payload.ReplyTo = &r
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("brevo: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("brevo: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}
	return nil
}
