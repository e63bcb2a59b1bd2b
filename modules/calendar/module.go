package calendar

import (
	"github.com/HyunsDev/opize-calendar2notion-server/core/cache"
	"github.com/HyunsDev/opize-calendar2notion-server/core/database"
	"github.com/HyunsDev/opize-calendar2notion-server/core/middleware"
	"github.com/HyunsDev/opize-calendar2notion-server/core/queue"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/controller"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/gateway"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/repository"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/router"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/service"
	userRepository "github.com/HyunsDev/opize-calendar2notion-server/modules/user/repository"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, c cache.Cache, q queue.Queue) {
	// Initialize layers
	repo := repository.NewCalendarRepository(db)
	eventRepo := repository.NewEventRepository()
	userRepo := userRepository.NewUserRepository(db)

	calendarService := service.NewCalendarService(
		repo,
		eventRepo,
		gateway.NewGoogleCalendarClient,
		gateway.NewNotionClient,
		q,
	)
	calendarController := controller.NewCalendarController(calendarService, userRepo)

	mw := middleware.NewMiddleware(c)

	// Setup routes
	router.NewCalendarRouter(calendarController).Setup(e, mw)
}
