package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/campus-advising/advising-api/internal/middleware"
	"github.com/campus-advising/advising-api/internal/models"
	"github.com/campus-advising/advising-api/internal/service"
	"github.com/campus-advising/advising-api/pkg/config"
	"github.com/campus-advising/advising-api/pkg/logger"
	corsmiddleware "github.com/campus-advising/advising-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-advising/advising-api/pkg/middleware/requestid"
)

// RouterDeps bundles everything the HTTP router needs.
type RouterDeps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Auth     *AuthHandler
	Courses  *CourseHandler
	Requests *RequestHandler
	Advisor  *AdvisorHandler
	Student  *StudentHandler
	Exports  *ExportHandler
	Metrics  *MetricsHandler

	MetricsService *service.MetricsService
	AuthService    *service.AuthService
}

// NewRouter assembles the gin engine with middleware and all route groups.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.MetricsService))

	r.GET("/health", deps.Metrics.Health)
	r.GET("/ready", deps.Metrics.Health)
	r.GET("/metrics", deps.Metrics.Prometheus)
	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.Config.APIPrefix)
	api.POST("/auth/login", deps.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.AuthService))
	authed.GET("/auth/me", deps.Auth.Me)

	// Catalog browsing is open to every authenticated role.
	authed.GET("/courses", deps.Courses.List)
	authed.GET("/courses/:id", deps.Courses.Get)

	student := authed.Group("")
	student.Use(middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/courses/available", deps.Courses.Available)
		student.GET("/courses/:id/eligibility", deps.Courses.Eligibility)
		student.POST("/requests", deps.Requests.Create)
		student.GET("/requests", deps.Requests.ListMine)
		student.DELETE("/requests/:id", deps.Requests.Cancel)
		student.GET("/me/ledger", deps.Student.Ledger)
		student.GET("/me/notes", deps.Student.Notes)
		if deps.Config.Exports.Enabled {
			student.GET("/me/exports/transcript", deps.Exports.Transcript)
			student.GET("/me/exports/requests", deps.Exports.RequestHistory)
		}
	}

	advisor := authed.Group("/advisor")
	advisor.Use(middleware.RequireRoles(models.RoleAdvisor))
	{
		advisor.GET("/requests", deps.Requests.ListAssigned)
		advisor.GET("/requests/:id", deps.Requests.Review)
		advisor.PUT("/requests/:id/decision", deps.Requests.Decide)
		advisor.GET("/students", deps.Advisor.Students)
		advisor.GET("/students/:id", deps.Advisor.Student)
		advisor.GET("/students/:id/notes", deps.Advisor.ListNotes)
		advisor.POST("/students/:id/notes", deps.Advisor.CreateNote)
		advisor.POST("/students/:id/suggestions", deps.Advisor.SuggestCourses)
	}

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/courses", deps.Courses.Create)
		admin.PUT("/courses/:id", deps.Courses.Update)
		admin.DELETE("/courses/:id", deps.Courses.Delete)
	}

	return r
}
