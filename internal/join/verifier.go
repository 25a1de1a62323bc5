package join

import (
	"context"
	"net/url"
	"time"

	commonhttp "murmax-onboarding/internal/common/http"
)

const (
	DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	DefaultMinScore  = 0.5
)

// Verifier checks a reCAPTCHA token.
type Verifier interface {
	Configured() bool
	Verify(ctx context.Context, token string) (Verification, error)
}

// Verification is the siteverify response. Score is nil for reCAPTCHA v2
// tokens, which carry no score.
type Verification struct {
	Success     bool     `json:"success"`
	Score       *float64 `json:"score,omitempty"`
	Action      string   `json:"action,omitempty"`
	Hostname    string   `json:"hostname,omitempty"`
	ChallengeTS string   `json:"challenge_ts,omitempty"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
}

// Passed reports whether the token succeeded and, when scored, met minScore.
func (v Verification) Passed(minScore float64) bool {
	if !v.Success {
		return false
	}
	return v.Score == nil || *v.Score >= minScore
}

// RecaptchaVerifier calls the siteverify endpoint.
type RecaptchaVerifier struct {
	client    *commonhttp.Client
	secret    string
	verifyURL string
}

func NewRecaptchaVerifier(secret, verifyURL string, timeout time.Duration) *RecaptchaVerifier {
	return NewRecaptchaVerifierWith(commonhttp.NewClient(timeout), secret, verifyURL)
}

func NewRecaptchaVerifierWith(client *commonhttp.Client, secret, verifyURL string) *RecaptchaVerifier {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &RecaptchaVerifier{client: client, secret: secret, verifyURL: verifyURL}
}

func (v *RecaptchaVerifier) Configured() bool {
	return v.secret != ""
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) (Verification, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)

	var out Verification
	if err := v.client.PostForm(ctx, v.verifyURL, form, &out); err != nil {
		return Verification{}, err
	}
	return out, nil
}
