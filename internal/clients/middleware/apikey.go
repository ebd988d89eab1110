package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	domain "github.com/lom3e/Formingo/internal/clients/domain"
	evdomain "github.com/lom3e/Formingo/internal/events/domain"
	"github.com/lom3e/Formingo/internal/logger"
	"github.com/lom3e/Formingo/internal/metrics"
)

// HeaderAPIKey carries the tenant credential. Header names are matched case-insensitively.
const HeaderAPIKey = "X-Api-Key"

const ctxClientKey = "formingo_client"

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewAPIKey returns an Echo middleware that resolves the client for the request
// and stores it in the context. In multi-tenant mode a missing or unknown API key
// ends the request with 401 before any handler logic runs.
func NewAPIKey(res domain.Resolver, pub evdomain.Publisher, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ip := c.RealIP()

			var apiKey string
			if res.RequiresCredential() {
				// http.Header.Get canonicalizes the name, so x-api-key and X-API-KEY both match.
				apiKey = c.Request().Header.Get(HeaderAPIKey)
			}

			client, err := res.Resolve(ctx, apiKey)
			if err != nil {
				msg := "Invalid API key."
				if errors.Is(err, domain.ErrMissingCredential) {
					msg = "Missing API key."
				}
				log.Warn().Str("ip", ip).Str("api_key", logger.MaskSecret(apiKey)).Err(err).Msg("request rejected")
				metrics.IncAuthOutcome("failure")
				_ = pub.Publish(ctx, evdomain.Event{
					Type: evdomain.TypeAuthRejected,
					Meta: map[string]string{"ip": ip, "reason": err.Error(), "api_key": logger.MaskSecret(apiKey)},
					Time: time.Now().UTC(),
				})
				return c.JSON(http.StatusUnauthorized, authResponse{Success: false, Message: msg})
			}

			if res.RequiresCredential() {
				log.Info().Str("ip", ip).Str("client_id", client.ClientID).Msg("request authenticated")
				metrics.IncAuthOutcome("success")
				_ = pub.Publish(ctx, evdomain.Event{
					Type:     evdomain.TypeAuthAccepted,
					ClientID: client.ClientID,
					Meta:     map[string]string{"ip": ip},
					Time:     time.Now().UTC(),
				})
			}

			c.Set(ctxClientKey, client)
			return next(c)
		}
	}
}

// Client returns the resolved client from context.
func Client(c echo.Context) (domain.Client, bool) {
	v := c.Get(ctxClientKey)
	if v == nil {
		return domain.Client{}, false
	}
	cl, ok := v.(domain.Client)
	return cl, ok
}
