package routes

import (
	"docbook/cmd/internal/utils"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Directory    *DefaultDirectoryRoute
	Reservation  *DefaultReservationRoute
	Schedule     *DefaultScheduleRoute
	Appointments *DefaultAppointmentRoute
}

// Register mounts the public API and the staff API behind auth.
func Register(e *echo.Echo, auth utils.Authenticator, h *Handlers) {
	// Directory
	e.GET("/api/cities", h.Directory.GetCities)
	e.GET("/api/doctors", h.Directory.SearchDoctors)
	e.GET("/api/doctors/:slug", h.Directory.GetDoctor)

	// Booking
	e.GET("/api/doctors/:id/availability", h.Reservation.GetAvailability)
	e.POST("/api/appointments", h.Reservation.CreateAppointment)

	staff := e.Group("/api/staff", RequireStaff(auth))

	// Schedule
	staff.GET("/doctors/:id/slots", h.Schedule.GetSlots)
	staff.POST("/doctors/:id/slots", h.Schedule.CreateSlot)
	staff.POST("/doctors/:id/slots/day", h.Schedule.CreateDaySlots)
	staff.DELETE("/slots/:id", h.Schedule.DeleteSlot)

	// Appointment desk
	staff.GET("/doctors/:id/appointments", h.Appointments.GetAppointments)
	staff.POST("/appointments", h.Reservation.CreateStaffAppointment)
	staff.PATCH("/appointments/:id", h.Appointments.UpdateStatus)
	staff.GET("/stats", h.Appointments.GetStats)
}
