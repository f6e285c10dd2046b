package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// GradeHandler wires learner-facing grade aggregation routes.
type GradeHandler struct {
	service service.GradeService
	logger  zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(service service.GradeService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches grade endpoints to the learner router group.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Get("/courses/:courseID/grades", h.courseGrades)
	router.Get("/grades/overview", h.overview)
}

func (h *GradeHandler) courseGrades(c *fiber.Ctx) error {
	learnerID := userIDFromContext(c)
	if learnerID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	courseID, err := parseUintParam(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grades, err := h.service.GetCourseGrades(c.Context(), learnerID, courseID)
	if err != nil {
		return respondServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "course grades retrieved", grades)
}

func (h *GradeHandler) overview(c *fiber.Ctx) error {
	learnerID := userIDFromContext(c)
	if learnerID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	overview, err := h.service.GetOverview(c.Context(), learnerID)
	if err != nil {
		return respondServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "grades overview retrieved", overview)
}
