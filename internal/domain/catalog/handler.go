package catalog

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/catalog")
	g.GET("/:kind", h.Search)
	g.GET("/:kind/:code", h.Lookup)
}

// Search handles GET /api/v1/catalog/:kind?q=&limit=&offset=
func (h *Handler) Search(c echo.Context) error {
	kind, err := ParseKind(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	p := pagination.FromContext(c)
	results, total, err := h.svc.Search(c.Request().Context(), kind, c.QueryParam("q"), p)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(results, total, p))
}

// Lookup handles GET /api/v1/catalog/:kind/:code
func (h *Handler) Lookup(c echo.Context) error {
	kind, err := ParseKind(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	opt, err := h.svc.Lookup(c.Request().Context(), kind, c.Param("code"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "option not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, opt)
}
