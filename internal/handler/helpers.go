package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/middleware"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return strings.ToLower(strings.TrimSpace(role))
		}
	}
	return ""
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	return service.ActivityActor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// validation 400, publish readiness 422, budget/transition/duplicate 409,
// not-found 404, computation and everything else 500.
func respondServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	var budget *service.BudgetExceededError
	var transition *service.InvalidTransitionError
	var publish *service.PublishRequirementsIncompleteError
	var computation *service.ComputationError

	switch {
	case errors.As(err, &validationErrors):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", validationErrors.Error())

	case errors.As(err, &publish):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "publish requirements incomplete", fiber.Map{
			"missing": publish.Missing,
		})

	case errors.As(err, &budget):
		return utils.Fail(c, fiber.StatusConflict, "score weight budget exceeded", fiber.Map{
			"current_total":   budget.CurrentTotal,
			"attempted_total": budget.AttemptedTotal,
			"limit":           budget.Limit,
		})

	case errors.As(err, &transition):
		return utils.Fail(c, fiber.StatusConflict, "invalid status transition", fiber.Map{
			"from": string(transition.From),
			"to":   string(transition.To),
		})

	case errors.Is(err, service.ErrDuplicateAssignmentTitle),
		errors.Is(err, service.ErrAssignmentNotOpen),
		errors.Is(err, service.ErrLateSubmissionNotAllowed):
		return utils.SendError(c, fiber.StatusConflict, err.Error())

	case errors.Is(err, service.ErrScoreRequired):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())

	case errors.As(err, &computation):
		logger.Error().Err(err).Msg("grade computation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "grade computation failed")

	default:
		logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
