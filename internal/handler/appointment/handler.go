package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatovet/clinic-api/internal/handler"
	"github.com/gatovet/clinic-api/internal/middleware"
	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/service/appointment"
	"github.com/gatovet/clinic-api/internal/service/lifecycle"
	"github.com/gatovet/clinic-api/pkg/httputil"
)

type FinalizeRequest struct {
	Diagnosis   *string     `json:"diagnosis"`
	Treatment   *string     `json:"treatment"`
	Notes       []string    `json:"notes"`
	DocumentIDs []uuid.UUID `json:"document_ids"`
}

type Handler struct {
	service   *appointment.Service
	lifecycle *lifecycle.Service
}

func NewHandler(service *appointment.Service, lifecycleSvc *lifecycle.Service) *Handler {
	return &Handler{service: service, lifecycle: lifecycleSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", auth.RequireRole(model.RoleReceptionist), h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("/:id/checkin", auth.RequireRole(model.RoleReceptionist), h.CheckIn)
		appointments.POST("/:id/start", auth.RequireRole(model.RoleDoctor), h.StartConsultation)
		appointments.POST("/:id/finalize", auth.RequireRole(model.RoleDoctor), h.FinalizeConsultation)
		appointments.POST("/:id/cancel", auth.RequireRole(model.RoleReceptionist), h.CancelAppointment)
	}

	r.GET("/waiting-room", h.ListWaitingRoom)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}
	if req.PatientID == nil && req.NewPatient == nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("either patient_id or new_patient is required"))
		return
	}

	apt, err := h.service.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{
		Date:   c.Query("date"),
		Status: model.AppointmentStatus(c.Query("status")),
	}

	if id := c.Query("patient_id"); id != "" {
		patientID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid patient ID"))
			return
		}
		filters.PatientID = patientID
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) ListWaitingRoom(c *gin.Context) {
	appointments, err := h.lifecycle.ListWaitingRoom(c.Request.Context())
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.lifecycle.CheckIn(c.Request.Context(), id)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) StartConsultation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.lifecycle.StartConsultation(c.Request.Context(), id)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) FinalizeConsultation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	input := lifecycle.FinalizeInput{
		Diagnosis:   req.Diagnosis,
		Treatment:   req.Treatment,
		Notes:       req.Notes,
		DocumentIDs: req.DocumentIDs,
	}
	if doctorID, ok := middleware.ProfileID(c); ok {
		input.DoctorID = &doctorID
	}

	record, err := h.lifecycle.FinalizeConsultation(c.Request.Context(), id, input)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithCreated(c, record)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.CancelAppointmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
			return
		}
	}

	apt, err := h.lifecycle.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}
