package queue

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/domain/intake"
	"github.com/ehr/intake/internal/platform/binding"
	"github.com/ehr/intake/pkg/pagination"
)

type Handler struct {
	q *Queue
}

func NewHandler(q *Queue) *Handler {
	return &Handler{q: q}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/queue")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.UpdateStatus)
	g.DELETE("/:id", h.Remove)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=aguardando em_atendimento atendido"`
}

// List handles GET /api/v1/queue?profissional=&equipe=&status=&risco=
func (h *Handler) List(c echo.Context) error {
	f := Filter{
		Professional: c.QueryParam("profissional"),
		Team:         c.QueryParam("equipe"),
	}
	if s := c.QueryParam("status"); s != "" {
		st, ok := ParseStatus(s)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status: "+s)
		}
		f.Status = st
	}
	if r := c.QueryParam("risco"); r != "" {
		risk := intake.RiskLevel(r)
		valid := false
		for _, level := range intake.RiskLevels {
			valid = valid || level == risk
		}
		if !valid {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid risk: "+r)
		}
		f.Risk = risk
	}

	p := pagination.FromContext(c)
	entries := h.q.List(f)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Page(entries, p), len(entries), p))
}

// Get handles GET /api/v1/queue/:id
func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	e, err := h.q.Get(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, e)
}

// UpdateStatus handles PATCH /api/v1/queue/:id
func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := binding.Bind(c, &req); err != nil {
		return err
	}
	e, err := h.q.SetStatus(id, Status(req.Status))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, e)
}

// Remove handles DELETE /api/v1/queue/:id
func (h *Handler) Remove(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.q.Remove(id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid queue entry id")
	}
	return id, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "queue entry not found")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return err
	}
}
