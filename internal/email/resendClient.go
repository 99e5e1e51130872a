package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/customHttpClient"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/metrics"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

type Sender interface {
	SendOTP(ctx context.Context, to string, code string, ttl time.Duration) error
}

const otpTemplate = `<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background: #f6f6f6; padding: 24px;">
    <div style="max-width: 480px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
      <h2 style="margin-top: 0;">Verify your email</h2>
      <p>Use the code below to finish signing in. It expires in {{.Minutes}} minutes.</p>
      <p style="font-size: 32px; letter-spacing: 8px; font-weight: bold; text-align: center;">{{.Code}}</p>
      <p style="color: #888888; font-size: 12px;">If you did not request this code you can ignore this email.</p>
    </div>
  </body>
</html>`

var otpEmail = template.Must(template.New("otp").Parse(otpTemplate))

// RenderOTPEmail states the expiry in whole minutes, never less than one.
func RenderOTPEmail(code string, ttl time.Duration) (string, error) {
	minutes := int(ttl / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	var buf bytes.Buffer
	err := otpEmail.Execute(&buf, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: minutes})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

type ResendConfig struct {
	URL    string
	APIKey string
	From   string
	Client *http.Client
}

// ResendClient posts to a Resend compatible transactional email API.
type ResendClient struct {
	url    string
	apiKey string
	from   string
	client *http.Client
	logger *logger_i.Logger
}

var _ Sender = (*ResendClient)(nil)

func NewResendClient(cfg ResendConfig) *ResendClient {
	client := cfg.Client
	if client == nil {
		client = customHttpClient.NewPooledClient(config.LivenessCheckTimeout)
	}
	return &ResendClient{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		from:   cfg.From,
		client: client,
		logger: logger_i.NewLogger("EmailClient"),
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (c *ResendClient) SendOTP(ctx context.Context, to string, code string, ttl time.Duration) error {
	log := c.logger.WithTrace(ctx)
	if c.apiKey == "" {
		return commonModels.UpstreamError("Email delivery is not configured", nil)
	}

	html, err := RenderOTPEmail(code, ttl)
	if err != nil {
		return commonModels.InternalError("could not render email", err)
	}
	body, err := json.Marshal(sendRequest{From: c.from, To: []string{to}, Subject: config.OTPSubject, HTML: html})
	if err != nil {
		return commonModels.InternalError("could not encode email", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return commonModels.InternalError("could not build email request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.CaptureExecutionMetrics("email_provider", time.Since(start))
	if err != nil {
		log.Error("Email provider unreachable", "error", err)
		return commonModels.UpstreamError("Could not send verification code", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Error("Email provider rejected message", "status", resp.StatusCode, "body", string(detail))
		return commonModels.UpstreamError("Could not send verification code", fmt.Errorf("email provider status %d", resp.StatusCode))
	}
	log.Info("Verification email sent")
	return nil
}
