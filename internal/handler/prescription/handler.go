package prescription

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rusdhi-de/clinic-api/internal/handler"
	"github.com/rusdhi-de/clinic-api/internal/model"
	appointmentService "github.com/rusdhi-de/clinic-api/internal/service/appointment"
	prescriptionService "github.com/rusdhi-de/clinic-api/internal/service/prescription"
)

type Handler struct {
	service      *prescriptionService.Service
	appointments *appointmentService.Service
}

func NewHandler(service *prescriptionService.Service, appointments *appointmentService.Service) *Handler {
	return &Handler{
		service:      service,
		appointments: appointments,
	}
}

// GetPrescriptionForm serves the appointment plus its current prescription,
// if one has been recorded.
func (h *Handler) GetPrescriptionForm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("appointment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	appointment, err := h.appointments.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	prescription, err := h.service.GetForAppointment(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"appointment":  appointment,
		"prescription": prescription,
	}))
}

// AddPrescription creates or overwrites the appointment's prescription.
func (h *Handler) AddPrescription(c *gin.Context) {
	id, err := uuid.Parse(c.Param("appointment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.PrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	prescription, err := h.service.Upsert(c.Request.Context(), id, req.Details)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescription))
}

// RegisterAdminRoutes wires the prescription endpoints; recording
// prescriptions is an admin operation.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/add_prescription/:appointment_id", h.GetPrescriptionForm)
	r.POST("/add_prescription/:appointment_id", h.AddPrescription)
}
