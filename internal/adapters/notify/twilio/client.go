package twilio

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"adoptapaw-service/internal/platform/httpclient"
	"adoptapaw-service/internal/platform/logger"
	"adoptapaw-service/internal/ports/notify"
)

var ErrUpstream = errors.New("twilio upstream error")

const (
	apiBaseURL     = "https://api.twilio.com"
	defaultTimeout = 10 * time.Second

	// País por defecto cuando el número viene sin prefijo internacional.
	defaultCountryPrefix = "+91"
)

// Config del cliente Twilio. Normalmente viene de env vars.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string

	// Simulate fuerza el modo simulación: el SMS se loguea en vez de
	// enviarse. También se simula si faltan credenciales o si hay
	// allowlist y el destino no está en ella (cuentas trial).
	Simulate        bool
	VerifiedNumbers []string

	// Opcional: base URL alternativa (tests).
	BaseURL string
}

// Client implementa notify.Notifier contra la Messages API de Twilio.
type Client struct {
	cfg  Config
	http *httpclient.Client
	log  logger.Logger

	verified map[string]struct{}
}

var _ notify.Notifier = (*Client)(nil)

func New(cfg Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = apiBaseURL
	}
	hc, err := httpclient.NewWithBaseURL(base, defaultTimeout)
	if err != nil {
		return nil, err
	}

	verified := make(map[string]struct{}, len(cfg.VerifiedNumbers))
	for _, n := range cfg.VerifiedNumbers {
		n = strings.TrimSpace(n)
		if n != "" {
			verified[n] = struct{}{}
		}
	}

	return &Client{
		cfg:      cfg,
		http:     hc,
		log:      log.With(map[string]any{"adapter": "twilio"}),
		verified: verified,
	}, nil
}

// NewFromEnv arma el cliente desde env:
// - TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN / TWILIO_PHONE_NUMBER
// - SIMULATE_SMS=true fuerza simulación
// - TWILIO_VERIFIED_NUMBERS=+91xxx,+91yyy (allowlist para cuentas trial)
func NewFromEnv(log logger.Logger) (*Client, error) {
	cfg := Config{
		AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		FromNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		Simulate:   os.Getenv("SIMULATE_SMS") == "true",
	}
	if raw := strings.TrimSpace(os.Getenv("TWILIO_VERIFIED_NUMBERS")); raw != "" {
		cfg.VerifiedNumbers = strings.Split(raw, ",")
	}
	return New(cfg, log)
}

// SetTransport inyecta un RoundTripper (tests).
func (c *Client) SetTransport(tr http.RoundTripper) {
	base := c.http.BaseURL
	c.http = httpclient.NewWithTransport(defaultTimeout, tr)
	c.http.BaseURL = base
}

type messageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Send entrega el SMS. En modo simulación loguea y devuelve nil.
func (c *Client) Send(ctx context.Context, phone, message string) error {
	to := formatPhone(phone)
	if to == "" {
		return fmt.Errorf("twilio: empty destination phone")
	}

	if c.shouldSimulate(to) {
		c.log.Info("simulated sms", map[string]any{"to": to, "body": message})
		return nil
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.cfg.FromNumber)
	form.Set("Body", message)

	path := fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", url.PathEscape(c.cfg.AccountSID))

	var out messageResponse
	err := c.http.DoForm(ctx, http.MethodPost, path, map[string]string{
		"Authorization": basicAuth(c.cfg.AccountSID, c.cfg.AuthToken),
	}, form, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			return fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if out.ErrorCode != nil {
		return fmt.Errorf("%w: code=%d msg=%s", ErrUpstream, *out.ErrorCode, out.ErrorMessage)
	}

	c.log.Debug("sms sent", map[string]any{"to": to, "sid": out.SID})
	return nil
}

func (c *Client) shouldSimulate(to string) bool {
	if c.cfg.Simulate {
		return true
	}
	if strings.TrimSpace(c.cfg.AccountSID) == "" || strings.TrimSpace(c.cfg.AuthToken) == "" {
		return true
	}
	if len(c.verified) > 0 {
		if _, ok := c.verified[to]; !ok {
			return true
		}
	}
	return false
}

var nonDigits = regexp.MustCompile(`\D`)

// formatPhone normaliza al formato E.164 asumiendo +91 como país default
// (mismo criterio que el sistema original de verificación).
func formatPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	digits := nonDigits.ReplaceAllString(phone, "")
	if digits == "" {
		return ""
	}

	if !strings.HasPrefix(phone, "+") {
		return defaultCountryPrefix + digits
	}
	if !strings.HasPrefix(phone, defaultCountryPrefix) {
		if len(digits) > 10 {
			digits = digits[len(digits)-10:]
		}
		return defaultCountryPrefix + digits
	}
	return phone
}

func basicAuth(user, pass string) string {
	raw := user + ":" + pass
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}
