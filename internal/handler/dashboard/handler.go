package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rusdhi-de/clinic-api/internal/handler"
	"github.com/rusdhi-de/clinic-api/internal/middleware"
	appointmentService "github.com/rusdhi-de/clinic-api/internal/service/appointment"
	prescriptionService "github.com/rusdhi-de/clinic-api/internal/service/prescription"
)

type Handler struct {
	appointments  *appointmentService.Service
	prescriptions *prescriptionService.Service
}

func NewHandler(appointments *appointmentService.Service, prescriptions *prescriptionService.Service) *Handler {
	return &Handler{
		appointments:  appointments,
		prescriptions: prescriptions,
	}
}

// PatientDashboard returns the logged-in patient's appointments,
// prescriptions, and medicine reminders.
func (h *Handler) PatientDashboard(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	appointments, err := h.appointments.ListForPatient(c.Request.Context(), principal.ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	prescriptions, err := h.prescriptions.ListForPatient(c.Request.Context(), principal.ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"appointments":       appointments,
		"prescriptions":      prescriptions,
		"medicine_reminders": prescriptionService.MedicineReminders(prescriptions),
	}))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.PatientDashboard)
}
