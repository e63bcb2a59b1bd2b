package router

import (
	"github.com/HyunsDev/opize-calendar2notion-server/core/middleware"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(controller *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{
		controller: controller,
	}
}

func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	calendarRoutes := v1.Group("/users/:userId/calendar")
	calendarRoutes.Use(mw.AuthMiddleware())

	calendarRoutes.POST("", r.controller.AddCalendar)
	calendarRoutes.POST("/:calendarId/rename", r.controller.RenameCalendar)
	calendarRoutes.DELETE("/:calendarId", r.controller.RemoveCalendar)
}
