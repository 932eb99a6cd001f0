package intake

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/domain/catalog"
	"github.com/ehr/intake/internal/platform/binding"
	"github.com/ehr/intake/internal/platform/websocket"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/intakes")
	g.POST("", h.Open)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Cancel)
	g.PUT("/:id/fields/:field", h.SetField)
	g.POST("/:id/select/:field", h.Select)
	g.DELETE("/:id/select/:field/:code", h.Deselect)
	g.POST("/:id/submit", h.Submit)
	g.GET("/:id/live", h.Live)

	api.POST("/validation/field", h.ValidateField)
	api.POST("/validation/mask", h.Mask)
	api.POST("/procedures/derive", h.Derive)
}

type openResponse struct {
	ID       string   `json:"id"`
	Snapshot Snapshot `json:"snapshot"`
}

type setFieldRequest struct {
	Value string `json:"value" validate:"max=2000"`
}

type selectRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type fieldResponse struct {
	Field    FieldState `json:"field"`
	Snapshot Snapshot   `json:"snapshot"`
}

type submitErrorResponse struct {
	Errors FieldErrors `json:"errors"`
}

type validateRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value" validate:"max=2000"`
}

type validateResponse struct {
	Field   Field   `json:"field"`
	Verdict Verdict `json:"verdict"`
}

type maskRequest struct {
	Type  string `json:"type" validate:"required"`
	Value string `json:"value" validate:"max=64"`
}

type deriveRequest struct {
	Anthropometry Anthropometry `json:"antropometria"`
	VitalSigns    VitalSigns    `json:"sinaisVitais"`
}

type deriveResponse struct {
	DerivedProcedures []string `json:"procedimentosAutomaticos"`
	BMI               *BMI     `json:"imc,omitempty"`
}

// Open handles POST /api/v1/intakes
func (h *Handler) Open(c echo.Context) error {
	var req OpenRequest
	if err := binding.Bind(c, &req); err != nil {
		return err
	}
	id, snap := h.svc.Open(req)
	return c.JSON(http.StatusCreated, openResponse{ID: id.String(), Snapshot: snap})
}

// Get handles GET /api/v1/intakes/:id
func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	snap, err := h.svc.Snapshot(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, snap)
}

// SetField handles PUT /api/v1/intakes/:id/fields/:field
func (h *Handler) SetField(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	field, err := parseField(c)
	if err != nil {
		return err
	}
	var req setFieldRequest
	if err := binding.Bind(c, &req); err != nil {
		return err
	}
	state, snap, err := h.svc.SetField(id, field, req.Value)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fieldResponse{Field: state, Snapshot: snap})
}

// Select handles POST /api/v1/intakes/:id/select/:field
func (h *Handler) Select(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	field, err := parseField(c)
	if err != nil {
		return err
	}
	var req selectRequest
	if err := binding.Bind(c, &req); err != nil {
		return err
	}
	state, snap, err := h.svc.Select(c.Request().Context(), id, field, req.Code)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fieldResponse{Field: state, Snapshot: snap})
}

// Deselect handles DELETE /api/v1/intakes/:id/select/:field/:code
func (h *Handler) Deselect(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	field, err := parseField(c)
	if err != nil {
		return err
	}
	state, snap, err := h.svc.Deselect(id, field, c.Param("code"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fieldResponse{Field: state, Snapshot: snap})
}

// Submit handles POST /api/v1/intakes/:id/submit?format=json|fhir
func (h *Handler) Submit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	format := c.QueryParam("format")
	if format != "" && format != "json" && format != "fhir" {
		return echo.NewHTTPError(http.StatusBadRequest, "format must be json or fhir")
	}

	in, err := h.svc.Submit(c.Request().Context(), id)
	var fieldErrs FieldErrors
	if errors.As(err, &fieldErrs) {
		return c.JSON(http.StatusUnprocessableEntity, submitErrorResponse{Errors: fieldErrs})
	}
	if err != nil {
		return httpError(err)
	}

	if format == "fhir" {
		bundle, err := in.FHIRBundle()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, bundle)
	}
	return c.JSON(http.StatusCreated, in)
}

// Cancel handles DELETE /api/v1/intakes/:id
func (h *Handler) Cancel(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Cancel(id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Live handles GET /api/v1/intakes/:id/live
func (h *Handler) Live(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.Snapshot(id); err != nil {
		return httpError(err)
	}
	conn, err := websocket.Upgrade(c)
	if err != nil {
		// the upgrader has already answered the request
		return nil
	}
	if err := websocket.Serve(c.Request().Context(), conn, h.live(id)); err != nil {
		h.svc.logger.Debug().Err(err).Str("session", id.String()).Msg("live stream closed")
	}
	return nil
}

// ValidateField handles POST /api/v1/validation/field
func (h *Handler) ValidateField(c echo.Context) error {
	var req validateRequest
	if err := binding.Bind(c, &req); err != nil {
		return err
	}
	field, ok := ParseField(req.Field)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown field: "+req.Field)
	}
	return c.JSON(http.StatusOK, validateResponse{Field: field, Verdict: Validate(field, req.Value)})
}

// Mask handles POST /api/v1/validation/mask
func (h *Handler) Mask(c echo.Context) error {
	var req maskRequest
	if err := binding.Bind(c, &req); err != nil {
		return err
	}
	t, err := ParseMaskType(req.Type)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := Mask(t, req.Value)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

// Derive handles POST /api/v1/procedures/derive
func (h *Handler) Derive(c echo.Context) error {
	var req deriveRequest
	if err := binding.Bind(c, &req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deriveResponse{
		DerivedProcedures: DeriveProcedures(req.Anthropometry, req.VitalSigns),
		BMI:               ComputeBMI(req.Anthropometry.Weight, req.Anthropometry.Height),
	})
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid intake id")
	}
	return id, nil
}

func parseField(c echo.Context) (Field, error) {
	field, ok := ParseField(c.Param("field"))
	if !ok {
		return "", echo.NewHTTPError(http.StatusBadRequest, "unknown field: "+c.Param("field"))
	}
	return field, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "intake session not found")
	case errors.Is(err, ErrFormClosed):
		return echo.NewHTTPError(http.StatusConflict, "intake form is closed")
	case errors.Is(err, catalog.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "option not found")
	case errors.Is(err, ErrUnknownField), errors.Is(err, ErrNotSelectable):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
