package admin

import (
	"github.com/HyunsDev/opize-calendar2notion-server/core/cache"
	"github.com/HyunsDev/opize-calendar2notion-server/core/database"
	"github.com/HyunsDev/opize-calendar2notion-server/core/middleware"
	"github.com/HyunsDev/opize-calendar2notion-server/core/storage"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/controller"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/repository"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/router"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, c cache.Cache, uploader storage.Uploader) {
	// Initialize layers
	repo := repository.NewErrorLogRepository(db)
	errorService := service.NewAdminErrorService(repo, uploader)
	errorController := controller.NewAdminErrorController(errorService)

	mw := middleware.NewMiddleware(c)

	// Setup routes
	router.NewAdminRouter(errorController).Setup(e, mw)
}
