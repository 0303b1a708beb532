package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rusdhi-de/clinic-api/internal/handler"
	"github.com/rusdhi-de/clinic-api/internal/middleware"
	"github.com/rusdhi-de/clinic-api/internal/model"
	appointmentService "github.com/rusdhi-de/clinic-api/internal/service/appointment"
)

type Handler struct {
	service *appointmentService.Service
}

func NewHandler(service *appointmentService.Service) *Handler {
	return &Handler{service: service}
}

// BookAppointment books a 30-minute slot with a doctor for the logged-in
// patient. The scheduling rules decide whether the slot may be taken.
func (h *Handler) BookAppointment(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	doctorID, err := uuid.Parse(c.Param("doctor_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	appointment, err := h.service.Book(c.Request.Context(), principal.ID, doctorID, req.StartTime)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

// ListAppointments serves the admin dashboard: every appointment, ordered
// by start time.
func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

// CancelAppointment hard-deletes an appointment.
func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("appointment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "appointment canceled"}))
}

// RegisterPatientRoutes wires booking for authenticated patients.
func (h *Handler) RegisterPatientRoutes(r *gin.RouterGroup) {
	r.POST("/book/:doctor_id", h.BookAppointment)
}

// RegisterAdminRoutes wires the admin appointment views.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/admin", h.ListAppointments)
	r.GET("/cancel_appointment/:appointment_id", h.CancelAppointment)
}
