package api

import (
	models "SignalHub/internal/domain/models"
	"SignalHub/internal/usecase"
	xhttp "SignalHub/pkg/http"
	xlogger "SignalHub/pkg/logger"
	"SignalHub/pkg/util"

	"github.com/labstack/echo/v4"
)

// AssetsHandler serves symbol resolution endpoints.
type AssetsHandler struct {
	logger   *xlogger.Logger
	resolver *usecase.Resolver
}

func NewAssetsHandler(logger *xlogger.Logger, resolver *usecase.Resolver) *AssetsHandler {
	return &AssetsHandler{logger: logger, resolver: resolver}
}

func (h *AssetsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/assets")
	g.GET("/search", h.Search)
	g.GET("/popular", h.Popular)
	g.GET("/counts", h.Counts)
}

func (h *AssetsHandler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	assets := h.resolver.SearchAll(c.Request().Context(), req.Query, req.Limit)
	return xhttp.ListResponse(c, assets, int64(len(assets)))
}

func (h *AssetsHandler) Popular(c echo.Context) error {
	limit := util.ParseIntDefault(c.QueryParam("limit"), 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	buckets := h.resolver.PopularAssets(c.Request().Context(), limit)
	return xhttp.SuccessResponse(c, buckets)
}

func (h *AssetsHandler) Counts(c echo.Context) error {
	counts := h.resolver.AssetCounts(c.Request().Context())
	return xhttp.SuccessResponse(c, counts)
}
