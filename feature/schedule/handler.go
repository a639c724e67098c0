package schedule

import (
	"errors"

	"delivery-tracker/core/logger"
	"delivery-tracker/core/reconcile"
	"delivery-tracker/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for schedule reconciliation.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the schedule routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/schedule")
	group.Get("/reconcile", h.HandleReconcile)
	group.Post("/reconcile", h.HandlePersist)
	group.Get("/health", h.HandleHealth)
}

// HandleReconcile runs a reconciliation and returns its summary without
// writing any output. Query parameters: records includes every record,
// errors caps the listed resolution errors.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	return h.reconcile(c, false)
}

// HandlePersist runs a reconciliation, writes the output file and the
// database, and returns the summary. It takes the same query parameters.
func (h *Handler) HandlePersist(c *fiber.Ctx) error {
	return h.reconcile(c, true)
}

func (h *Handler) reconcile(c *fiber.Ctx, persist bool) error {
	l := logger.WithRayID(h.service.logger, c)

	limit := h.service.cfg.ErrorLimit
	if n := utils.ToInt(c.Query("errors")); n > 0 {
		limit = n
	}

	res, err := h.service.Run(c.UserContext(), RunOptions{Persist: persist})
	if err != nil {
		l.Error("Schedule reconciliation failed", zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, reconcile.ErrMissingKeyColumns) {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(Summarize(res, limit, utils.ToBool(c.Query("records"))))
}

// HandleHealth reports whether the master dataset and snapshots are reachable.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	ctx := c.UserContext()
	cfg := h.service.cfg

	rc, err := h.service.fs.Open(ctx, cfg.MasterFile)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  err.Error(),
		})
	}
	_ = rc.Close()

	handles, err := NewPlanningSource(h.service.fs, cfg).ListSnapshots(ctx)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  err.Error(),
		})
	}

	latest := ""
	if len(handles) > 0 {
		latest = handles[len(handles)-1].Label
	}
	return c.JSON(fiber.Map{
		"status":          "ok",
		"snapshots":       len(handles),
		"latest_snapshot": latest,
	})
}
