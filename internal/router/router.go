package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/config"
	"github.com/noah-isme/campus-go-api/internal/handler"
	"github.com/noah-isme/campus-go-api/internal/middleware"
	"github.com/noah-isme/campus-go-api/internal/observability"
	"github.com/noah-isme/campus-go-api/internal/service"
)

// Dependencies carries everything the router needs to wire endpoints.
type Dependencies struct {
	Config config.Config
	Logger zerolog.Logger

	Assignments service.AssignmentService
	Submissions service.SubmissionService
	Grading     service.GradingService
	Grades      service.GradeService
	Activity    service.ActivityService

	// JWTMiddleware overrides the default token guard, mainly for tests.
	JWTMiddleware fiber.Handler
}

// Register wires all HTTP routes onto the app.
func Register(app *fiber.App, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1")
	api.Get("/health", handler.HealthCheck(deps.Config))

	jwt := deps.JWTMiddleware
	if jwt == nil {
		jwt = middleware.JWTProtected(deps.Config.JWTSecret)
	}

	instructor := api.Group("/instructor", jwt, middleware.RequireRole(middleware.AuthRoleInstructor))
	learner := api.Group("/learner", jwt, middleware.RequireRole(middleware.AuthRoleLearner))

	assignmentHandler := handler.NewAssignmentHandler(deps.Assignments, deps.Logger)
	assignmentHandler.Register(instructor.Group("/courses/:courseID/assignments"))

	gradingHandler := handler.NewGradingHandler(deps.Grading, deps.Logger)
	gradingHandler.Register(instructor.Group("/courses/:courseID/submissions"))

	activityHandler := handler.NewActivityHandler(deps.Activity, deps.Logger)
	activityHandler.Register(instructor.Group("/activity"))

	submissionHandler := handler.NewSubmissionHandler(deps.Submissions, deps.Logger)
	submissionHandler.Register(learner.Group("/assignments/:assignmentID/submissions",
		middleware.RateLimit("submissions", deps.Config.RateLimitMax, deps.Config.RateLimitWindow)))

	gradeHandler := handler.NewGradeHandler(deps.Grades, deps.Logger)
	gradeHandler.Register(learner)
}
