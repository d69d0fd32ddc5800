package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/peergrade-io/peergrade-api/internal/dto"
	"github.com/peergrade-io/peergrade-api/internal/service"
	"github.com/peergrade-io/peergrade-api/internal/utils"
)

// AssignmentHandler wires the review-assignment lifecycle: preview plan
// building, commit, reset, status and the committed review map.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the tasks router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("/:id/review-plan", h.buildPlan)
	router.Post("/:id/review-plan/commit", h.commit)
	router.Delete("/:id/reviews", h.reset)
	router.Get("/:id/reviews/status", h.status)
	router.Get("/:id/reviews/map", h.currentMap)
}

func (h *AssignmentHandler) buildPlan(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.BuildPlanRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	plan, err := h.service.BuildPlan(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "preview plan built", plan)
}

// commit gates on the lock before persisting: a task that already has
// committed reviews must be reset first.
func (h *AssignmentHandler) commit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	locked, err := h.service.Locked(c.Context(), id)
	if err != nil {
		return h.internalError(c, err)
	}
	if locked {
		return utils.SendError(c, fiber.StatusConflict, "assignment is locked; reset before re-assigning")
	}

	var payload dto.CommitPlanRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	state, err := h.service.Commit(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "review plan committed", state)
}

func (h *AssignmentHandler) reset(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	state, err := h.service.Reset(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "review assignment reset", state)
}

func (h *AssignmentHandler) status(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	state, err := h.service.Status(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment status retrieved", state)
}

func (h *AssignmentHandler) currentMap(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	current, err := h.service.CurrentMap(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "review map retrieved", current)
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "task not found")
	case errors.Is(err, service.ErrAssignmentLocked):
		return utils.SendError(c, fiber.StatusConflict, "assignment is locked; reset before re-assigning")
	case errors.Is(err, service.ErrNoPairs):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "plan contains no pairs")
	case errors.Is(err, service.ErrInvalidMode):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment mode")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AssignmentHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
