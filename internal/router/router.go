package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/kanban/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Project *apiHandler.ProjectHandler
	Board   *apiHandler.BoardHandler
	Report  *apiHandler.ReportHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", authMiddleware(handlers.Auth.Refresh))
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))
	r.GET("/api/v1/users", authMiddleware(handlers.Profile.ListUsers))

	r.GET("/api/v1/projects", authMiddleware(handlers.Project.ListProjects))
	r.POST("/api/v1/projects", authMiddleware(handlers.Project.CreateProject))
	r.PUT("/api/v1/projects/{id}", authMiddleware(handlers.Project.UpdateProject))
	r.DELETE("/api/v1/projects/{id}", authMiddleware(handlers.Project.DeleteProject))

	// Board
	r.GET("/api/v1/board", authMiddleware(handlers.Board.GetBoard))
	r.POST("/api/v1/board/cards", authMiddleware(handlers.Board.CreateCard))
	r.PUT("/api/v1/board/cards/{id}", authMiddleware(handlers.Board.UpdateCard))
	r.DELETE("/api/v1/board/cards/{id}", authMiddleware(handlers.Board.DeleteCard))
	r.POST("/api/v1/board/cards/{id}/move", authMiddleware(handlers.Board.MoveCard))
	r.GET("/api/v1/board/cards/{id}/activity", authMiddleware(handlers.Board.CardActivity))
	r.POST("/api/v1/board/columns", authMiddleware(handlers.Board.CreateColumn))

	r.GET("/api/v1/reports/timeline", authMiddleware(handlers.Report.Timeline))
	r.GET("/api/v1/reports/dashboard", authMiddleware(handlers.Report.Dashboard))

	return r
}
