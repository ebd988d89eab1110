package contact

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	cdomain "github.com/lom3e/Formingo/internal/clients/domain"
	cmw "github.com/lom3e/Formingo/internal/clients/middleware"
	csvc "github.com/lom3e/Formingo/internal/clients/service"
	"github.com/lom3e/Formingo/internal/config"
	ctrl "github.com/lom3e/Formingo/internal/contact/controller"
	"github.com/lom3e/Formingo/internal/contact/domain"
	svc "github.com/lom3e/Formingo/internal/contact/service"
	esvc "github.com/lom3e/Formingo/internal/email/service"
	evsvc "github.com/lom3e/Formingo/internal/events/service"
	vsvc "github.com/lom3e/Formingo/internal/verification/service"
)

// Register wires the contact module and registers HTTP routes. The returned
// service is drained on shutdown.
func Register(e *echo.Echo, cfg config.Config, repo cdomain.Repository, log zerolog.Logger) domain.Service {
	pub := evsvc.NewLogger(log)
	gate := vsvc.NewGate(cfg, vsvc.NewGoogle(cfg), log)
	s := svc.New(cfg, gate, esvc.NewRouter(cfg), pub, log)
	auth := cmw.NewAPIKey(csvc.NewResolver(cfg, repo), pub, log)
	ctrl.New(s).Register(e, auth)
	return s
}
