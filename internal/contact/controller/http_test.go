package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdomain "github.com/lom3e/Formingo/internal/clients/domain"
	cmw "github.com/lom3e/Formingo/internal/clients/middleware"
	"github.com/lom3e/Formingo/internal/clients/repository"
	csvc "github.com/lom3e/Formingo/internal/clients/service"
	"github.com/lom3e/Formingo/internal/config"
	"github.com/lom3e/Formingo/internal/contact/domain"
	svc "github.com/lom3e/Formingo/internal/contact/service"
	edomain "github.com/lom3e/Formingo/internal/email/domain"
	evdomain "github.com/lom3e/Formingo/internal/events/domain"
	"github.com/lom3e/Formingo/internal/logger"
	vsvc "github.com/lom3e/Formingo/internal/verification/service"
)

type countingVerifier struct {
	mu    sync.Mutex
	ok    bool
	calls int
}

func (v *countingVerifier) Verify(ctx context.Context, secret, token, remoteIP string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return v.ok, nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []edomain.Message
	from []edomain.Identity
	err  error
}

func (r *recordingSender) Send(ctx context.Context, from edomain.Identity, msg edomain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	r.from = append(r.from, from)
	return r.err
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []evdomain.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e evdomain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	e        *echo.Echo
	svc      domain.Service
	verifier *countingVerifier
	sender   *recordingSender
	pub      *recordingPublisher
}

func newHarness(t *testing.T, cfg config.Config) *harness {
	t.Helper()
	if cfg.TenantMode == "" {
		cfg.TenantMode = config.TenantModeSingle
	}
	if cfg.DispatchMode == "" {
		cfg.DispatchMode = config.DispatchDetached
	}
	cfg.MailFromName = "Formingo"
	cfg.DispatchTimeout = time.Second
	cfg.SMTPUsername = "forms@example.com"
	cfg.SMTPPassword = "app-pass"
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = "admin@example.com"
	}

	h := &harness{
		e:        echo.New(),
		verifier: &countingVerifier{ok: true},
		sender:   &recordingSender{},
		pub:      &recordingPublisher{},
	}
	repo := repository.New(map[string]cdomain.Client{
		"key-acme-123": {ClientID: "acme", RecaptchaSecret: "rs-acme", Email: "forms@acme.test", GmailPass: "pw-acme"},
	})
	gate := vsvc.NewGate(cfg, h.verifier, logger.Nop())
	h.svc = svc.New(cfg, gate, h.sender, h.pub, logger.Nop())
	auth := cmw.NewAPIKey(csvc.NewResolver(cfg, repo), h.pub, logger.Nop())
	New(h.svc).Register(h.e, auth)
	return h
}

func (h *harness) post(t *testing.T, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

func (h *harness) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.svc.Drain(ctx))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const validBody = `{"name":"Ana","email":"ana@x.com","message":"hi","privacyAccepted":true}`

func TestStaticRoutes(t *testing.T) {
	h := newHarness(t, config.Config{})
	for path, want := range map[string]string{"/": "Formingo API is running", "/hello": "Hello, this is Formingo!"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, rec.Body.String())
	}
}

func TestContact_SuccessDispatchesTwoMessages(t *testing.T) {
	h := newHarness(t, config.Config{RecaptchaDisabled: true})

	rec := h.post(t, validBody, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, successMessage, body["message"])
	assert.NotEmpty(t, body["id"])

	h.drain(t)
	require.Equal(t, 2, h.sender.count())
	byTo := map[string]edomain.Message{}
	for _, m := range h.sender.sent {
		byTo[m.To] = m
	}
	require.Contains(t, byTo, "admin@example.com")
	require.Contains(t, byTo, "ana@x.com")
	assert.False(t, byTo["admin@example.com"].BlindCopyToSender())
	assert.True(t, byTo["ana@x.com"].BlindCopyToSender())
	for _, from := range h.sender.from {
		assert.Equal(t, "forms@example.com", from.Address)
	}
	assert.Zero(t, h.verifier.calls)
}

func TestContact_ValidationErrors(t *testing.T) {
	h := newHarness(t, config.Config{RecaptchaDisabled: true})
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"email":"not-an-email","message":"hi","privacyAccepted":false}`, "Missing required fields."},
		{"missing message", `{"name":"Ana","email":"ana@x.com","privacyAccepted":true}`, "Missing required fields."},
		{"empty body", ``, "Missing required fields."},
		{"invalid email beats privacy", `{"name":"Ana","email":"ana@x","message":"hi","privacyAccepted":false}`, "Invalid email format."},
		{"privacy as string", `{"name":"Ana","email":"ana@x.com","message":"hi","privacyAccepted":"true"}`, "Privacy Policy must be accepted."},
		{"privacy as number", `{"name":"Ana","email":"ana@x.com","message":"hi","privacyAccepted":1}`, "Privacy Policy must be accepted."},
		{"privacy absent", `{"name":"Ana","email":"ana@x.com","message":"hi"}`, "Privacy Policy must be accepted."},
		{"malformed json", `{"name":`, "Invalid request body."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := h.post(t, tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, decode(t, rec)["error"])
		})
	}
	h.drain(t)
	assert.Zero(t, h.sender.count())
}

func TestContact_VerificationEnabled(t *testing.T) {
	h := newHarness(t, config.Config{})

	rec := h.post(t, validBody, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "reCAPTCHA token missing.", decode(t, rec)["error"])
	assert.Zero(t, h.verifier.calls, "no provider call without a token")

	h.verifier.ok = false
	rec = h.post(t, `{"name":"Ana","email":"ana@x.com","message":"hi","privacyAccepted":true,"token":"t"}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Failed reCAPTCHA verification.", decode(t, rec)["error"])
	assert.Equal(t, 1, h.verifier.calls)

	h.verifier.ok = true
	rec = h.post(t, `{"name":"Ana","email":"ana@x.com","message":"hi","privacyAccepted":true,"token":"t"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	h.drain(t)
	assert.Equal(t, 2, h.sender.count())
}

func TestContact_MultiTenantUnknownKeyShortCircuits(t *testing.T) {
	h := newHarness(t, config.Config{TenantMode: config.TenantModeMulti})
	perfect := `{"name":"Ana","email":"ana@x.com","message":"hi","privacyAccepted":true,"token":"t"}`

	rec := h.post(t, perfect, map[string]string{"x-api-key": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid API key.", body["message"])

	rec = h.post(t, perfect, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing API key.", decode(t, rec)["message"])

	// A bad key must not even reach field validation.
	rec = h.post(t, `{}`, map[string]string{"X-API-KEY": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	h.drain(t)
	assert.Zero(t, h.verifier.calls)
	assert.Zero(t, h.sender.count())
	assert.NotContains(t, h.pub.types(), evdomain.TypeSubmissionRejected)
	assert.Contains(t, h.pub.types(), evdomain.TypeAuthRejected)
}

func TestContact_MultiTenantSendsAsTenant(t *testing.T) {
	h := newHarness(t, config.Config{TenantMode: config.TenantModeMulti})

	for _, header := range []string{"x-api-key", "X-API-KEY", "X-Api-Key"} {
		h.sender.mu.Lock()
		h.sender.sent, h.sender.from = nil, nil
		h.sender.mu.Unlock()

		rec := h.post(t, `{"name":"Ana","email":"ana@x.com","message":"hi","privacyAccepted":true,"token":"t"}`,
			map[string]string{header: "key-acme-123"})
		require.Equal(t, http.StatusOK, rec.Code, "header %s: %s", header, rec.Body.String())
		h.drain(t)

		require.Equal(t, 2, h.sender.count())
		tos := []string{h.sender.sent[0].To, h.sender.sent[1].To}
		assert.ElementsMatch(t, []string{"forms@acme.test", "ana@x.com"}, tos)
		for _, from := range h.sender.from {
			assert.Equal(t, edomain.Identity{Address: "forms@acme.test", Secret: "pw-acme", Name: "Formingo"}, from)
		}
	}
	assert.Contains(t, h.pub.types(), evdomain.TypeAuthAccepted)
}

func TestContact_DetachedDispatchFailureKeeps200(t *testing.T) {
	h := newHarness(t, config.Config{RecaptchaDisabled: true})
	h.sender.err = edomain.ErrProviderUnreachable

	rec := h.post(t, validBody, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	h.drain(t)
	assert.Equal(t, 2, h.sender.count())
	assert.Contains(t, h.pub.types(), evdomain.TypeNotificationFailed)
}

func TestContact_BlockingDispatchFailureIs500(t *testing.T) {
	h := newHarness(t, config.Config{RecaptchaDisabled: true, DispatchMode: config.DispatchBlocking})
	h.sender.err = edomain.ErrRejected

	rec := h.post(t, validBody, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to send notification emails.", decode(t, rec)["error"])
	assert.Equal(t, 2, h.sender.count(), "both sends attempted before responding")

	h.sender.err = nil
	rec = h.post(t, validBody, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, h.sender.count())
}

func TestContact_SkippedVerificationIsAudited(t *testing.T) {
	h := newHarness(t, config.Config{RecaptchaDisabled: true})
	require.Equal(t, http.StatusOK, h.post(t, validBody, nil).Code)
	h.drain(t)
	assert.Contains(t, h.pub.types(), evdomain.TypeVerificationSkipped)
	assert.Contains(t, h.pub.types(), evdomain.TypeSubmissionAccepted)
}
