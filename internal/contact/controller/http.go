package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	cmw "github.com/lom3e/Formingo/internal/clients/middleware"
	"github.com/lom3e/Formingo/internal/contact/domain"
)

type Controller struct {
	svc domain.Service
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

// Register mounts the public routes. auth guards POST /contact only.
func (h *Controller) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/", h.root)
	e.GET("/hello", h.hello)
	e.POST("/contact", h.contact, auth)
}

func (h *Controller) root(c echo.Context) error {
	return c.String(http.StatusOK, "Formingo API is running")
}

func (h *Controller) hello(c echo.Context) error {
	return c.String(http.StatusOK, "Hello, this is Formingo!")
}

type contactReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Message         string `json:"message"`
	PrivacyAccepted any    `json:"privacyAccepted"`
	Token           string `json:"token"`
}

type contactResp struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type errorResp struct {
	Error string `json:"error"`
}

const successMessage = "Form submitted successfully!"

func (h *Controller) contact(c echo.Context) error {
	client, ok := cmw.Client(c)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorResp{Error: "Internal server error."})
	}

	var req contactReq
	if err := c.Bind(&req); err != nil {
		return h.fail(c, domain.NewError(domain.ErrInvalidBody))
	}
	sub := domain.Submission{
		Name:            req.Name,
		Email:           req.Email,
		Message:         req.Message,
		PrivacyAccepted: req.PrivacyAccepted,
		Token:           req.Token,
		RemoteIP:        c.RealIP(),
	}

	ctx := c.Request().Context()
	receipt, err := h.svc.Accept(ctx, client, sub)
	if err != nil {
		return h.fail(c, err)
	}

	resp := contactResp{Message: successMessage, ID: receipt.ID.String()}
	if h.svc.Blocking() {
		if err := h.svc.Notify(ctx, receipt); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return err
	}
	h.svc.NotifyDetached(ctx, receipt)
	return nil
}

func (h *Controller) fail(c echo.Context, err error) error {
	var perr *domain.Error
	if !errors.As(err, &perr) {
		perr = domain.NewError(err)
	}
	return c.JSON(perr.Status, errorResp{Error: perr.Message})
}
