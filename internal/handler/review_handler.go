package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/peergrade-io/peergrade-api/internal/dto"
	"github.com/peergrade-io/peergrade-api/internal/service"
	"github.com/peergrade-io/peergrade-api/internal/utils"
)

// ReviewHandler wires review submission and meta-review routes.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register attaches review endpoints to the router group.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Post("/:pairId", h.submit)
	router.Post("/:pairId/meta", h.submitMeta)
}

func (h *ReviewHandler) submit(c *fiber.Ctx) error {
	pairID, err := parseUintParam(c, "pairId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReviewSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	review, err := h.service.Submit(c.Context(), pairID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "review submitted", review)
}

func (h *ReviewHandler) submitMeta(c *fiber.Ctx) error {
	pairID, err := parseUintParam(c, "pairId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.MetaReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	meta, err := h.service.SubmitMeta(c.Context(), pairID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "meta-review submitted", meta)
}

func (h *ReviewHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrReviewPairNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "review pair not found")
	case errors.Is(err, service.ErrUnknownRubricItem), errors.Is(err, service.ErrScoreExceedsMax):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
