package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gopkg.in/gomail.v2"
)

// SMSSender delivers short messages through an HTTP SMS gateway.
type SMSSender struct {
	gatewayURL string
	apiKey     string
	senderID   string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewSMSSender(gatewayURL, apiKey, senderID string, logger *slog.Logger) *SMSSender {
	return &SMSSender{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		senderID:   senderID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type smsPayload struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

func (s *SMSSender) Send(phone, message string) error {
	if s.gatewayURL == "" {
		s.logger.Warn("sms gateway not configured, dropping message", "phone", phone)
		return nil
	}

	body, err := json.Marshal(smsPayload{To: phone, From: s.senderID, Message: message})
	if err != nil {
		return fmt.Errorf("marshal sms payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	s.logger.Info("sms sent", "phone", phone)
	return nil
}

// EmailSender delivers mail over SMTP.
type EmailSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *slog.Logger
}

func NewEmailSender(host string, port int, username, password, from string, logger *slog.Logger) *EmailSender {
	return &EmailSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
	}
}

func (e *EmailSender) Send(to, subject, body string) error {
	if e.host == "" {
		e.logger.Warn("smtp not configured, dropping email", "to", to)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(e.host, e.port, e.username, e.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	e.logger.Info("email sent", "to", to)
	return nil
}
