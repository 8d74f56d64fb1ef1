// Package verify holds the captcha and one-time-code checks used by
// registration and login.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CaptchaVerifier decides whether a client-supplied captcha token is valid.
type CaptchaVerifier interface {
	VerifyCaptcha(ctx context.Context, token string) (bool, error)
}

// PresenceVerifier accepts any non-blank token. It is used when no captcha
// secret is configured.
type PresenceVerifier struct{}

func (PresenceVerifier) VerifyCaptcha(_ context.Context, token string) (bool, error) {
	return strings.TrimSpace(token) != "", nil
}

// RecaptchaVerifier checks tokens against a reCAPTCHA-compatible siteverify
// endpoint.
type RecaptchaVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

func NewRecaptchaVerifier(secret, verifyURL string, client *http.Client) *RecaptchaVerifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &RecaptchaVerifier{secret: secret, verifyURL: verifyURL, client: client}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *RecaptchaVerifier) VerifyCaptcha(ctx context.Context, token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}

	form := url.Values{"secret": {v.secret}, "response": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha verification failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha verification returned status %d", resp.StatusCode)
	}

	var body siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode captcha response: %w", err)
	}
	return body.Success, nil
}

// NewCaptchaVerifier picks the reCAPTCHA verifier when a secret is set.
func NewCaptchaVerifier(secret, verifyURL string) CaptchaVerifier {
	if secret == "" {
		return PresenceVerifier{}
	}
	return NewRecaptchaVerifier(secret, verifyURL, nil)
}
