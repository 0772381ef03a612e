package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/config"
)

// Message is a plain-text email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers outbound email
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender picks SendGrid when an API key is configured and the log
// sender otherwise
func NewSender(cfg config.MailConfig, logger *slog.Logger) Sender {
	if cfg.SendGridAPIKey == "" {
		return NewLogSender(logger)
	}
	return NewSendGridSender(cfg)
}

// PasswordResetMessage builds the reset email for token
func PasswordResetMessage(frontendURL, to, token string) Message {
	resetURL := fmt.Sprintf("%s/reset-password/%s", frontendURL, token)
	return Message{
		To:      to,
		Subject: "Password Reset Request",
		Body:    fmt.Sprintf("Click here to reset your password: %s", resetURL),
	}
}

// SendGridSender posts messages to the SendGrid v3 mail API
type SendGridSender struct {
	apiKey    string
	endpoint  string
	fromEmail string
	fromName  string
	client    *http.Client
}

func NewSendGridSender(cfg config.MailConfig) *SendGridSender {
	return &SendGridSender{
		apiKey:    cfg.SendGridAPIKey,
		endpoint:  cfg.SendGridURL,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SendGrid request format
type sgEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
type sgPersonalization struct {
	To []sgEmail `json:"to"`
}
type sgRequest struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgEmail             `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	body := sgRequest{
		Personalizations: []sgPersonalization{{To: []sgEmail{{Email: msg.To}}}},
		From:             sgEmail{Email: s.fromEmail, Name: s.fromName},
		Subject:          msg.Subject,
		Content:          []sgContent{{Type: "text/plain", Value: msg.Body}},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode sendgrid request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	defer resp.Body.Close()

	// 202 on success
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sendgrid error: status=%d body=%s", resp.StatusCode, respBody)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. The body
// is omitted because it carries the reset link.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "Email not delivered, no mail transport configured",
		"to", msg.To,
		"subject", msg.Subject)
	return nil
}
