package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/lom3e/Formingo/internal/config"
	vdomain "github.com/lom3e/Formingo/internal/verification/domain"
)

// Ensure Google implements domain.Verifier
var _ vdomain.Verifier = (*Google)(nil)

// Google verifies reCAPTCHA tokens against the siteverify endpoint.
type Google struct {
	url  string
	http *resty.Client
}

func NewGoogle(cfg config.Config) *Google {
	c := resty.New().
		SetTimeout(cfg.RecaptchaTimeout).
		SetHeader("Accept", "application/json")
	return &Google{url: cfg.RecaptchaVerifyURL, http: c}
}

type siteverifyResponse struct {
	Success    *bool    `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

func (g *Google) Verify(ctx context.Context, secret, token, remoteIP string) (bool, error) {
	form := map[string]string{
		"secret":   secret,
		"response": token,
	}
	if remoteIP != "" {
		form["remoteip"] = remoteIP
	}
	resp, err := g.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(g.url)
	if err != nil {
		return false, fmt.Errorf("%w: %v", vdomain.ErrProviderUnreachable, err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("%w: status %s", vdomain.ErrProviderUnreachable, resp.Status())
	}
	var out siteverifyResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return false, fmt.Errorf("%w: decode reply: %v", vdomain.ErrProviderUnreachable, err)
	}
	if out.Success == nil {
		return false, fmt.Errorf("%w: reply has no success field", vdomain.ErrProviderUnreachable)
	}
	return *out.Success, nil
}
