package router

import (
	"github.com/HyunsDev/opize-calendar2notion-server/core/middleware"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/controller"

	"github.com/labstack/echo/v4"
)

type AdminRouter struct {
	errorController *controller.AdminErrorController
}

func NewAdminRouter(errorController *controller.AdminErrorController) *AdminRouter {
	return &AdminRouter{
		errorController: errorController,
	}
}

func (r *AdminRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	adminRoutes := v1.Group("/admin")
	adminRoutes.Use(mw.AuthMiddleware(), mw.AdminMiddleware())

	adminRoutes.GET("/errors", r.errorController.GetErrors)
	adminRoutes.DELETE("/errors/:errorId", r.errorController.DeleteError)
	adminRoutes.POST("/errors/archive", r.errorController.ArchiveErrors)
}
