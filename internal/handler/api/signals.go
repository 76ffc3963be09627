package api

import (
	models "SignalHub/internal/domain/models"
	"SignalHub/internal/usecase"
	xhttp "SignalHub/pkg/http"
	xlogger "SignalHub/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HeaderPrincipalID carries the authenticated caller identity set by
// the upstream gateway.
const HeaderPrincipalID = "X-Principal-ID"

// SignalsHandler serves the signal lifecycle endpoints.
type SignalsHandler struct {
	logger  *xlogger.Logger
	signals *usecase.SignalService
}

func NewSignalsHandler(logger *xlogger.Logger, signals *usecase.SignalService) *SignalsHandler {
	return &SignalsHandler{logger: logger, signals: signals}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/signals")
	g.POST("", h.Create)
	g.GET("", h.ListAll)
	g.GET("/active", h.ListActive)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.POST("/:id/follow", h.Follow)
	g.DELETE("/:id", h.Delete)
}

func (h *SignalsHandler) Create(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return xhttp.UnauthorizedResponse(c, "missing "+HeaderPrincipalID)
	}

	req := &models.CreateSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.signals.Create(c.Request().Context(), p, req)
	if err != nil {
		h.logger.Error("create signal failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, sig)
}

func (h *SignalsHandler) ListAll(c echo.Context) error {
	sigs, err := h.signals.ListAll(c.Request().Context())
	if err != nil {
		h.logger.Error("list signals failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, sigs, int64(len(sigs)))
}

func (h *SignalsHandler) ListActive(c echo.Context) error {
	sigs, err := h.signals.ListActive(c.Request().Context())
	if err != nil {
		h.logger.Error("list active signals failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, sigs, int64(len(sigs)))
}

func (h *SignalsHandler) Get(c echo.Context) error {
	sig, err := h.signals.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *SignalsHandler) UpdateStatus(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return xhttp.UnauthorizedResponse(c, "missing "+HeaderPrincipalID)
	}

	req := &models.UpdateStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}

	sig, err := h.signals.UpdateStatus(c.Request().Context(), p, c.Param("id"), status)
	if err != nil {
		h.logger.Error("update status failed",
			xlogger.String("signal_id", c.Param("id")), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *SignalsHandler) Follow(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return xhttp.UnauthorizedResponse(c, "missing "+HeaderPrincipalID)
	}

	sig, err := h.signals.Follow(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *SignalsHandler) Delete(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return xhttp.UnauthorizedResponse(c, "missing "+HeaderPrincipalID)
	}

	if err := h.signals.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		h.logger.Error("delete signal failed",
			xlogger.String("signal_id", c.Param("id")), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func principal(c echo.Context) (models.Principal, bool) {
	id := c.Request().Header.Get(HeaderPrincipalID)
	if id == "" {
		return models.Principal{}, false
	}
	return models.Principal{ID: id}, true
}
