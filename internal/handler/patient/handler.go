package patient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatovet/clinic-api/internal/handler"
	"github.com/gatovet/clinic-api/internal/middleware"
	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/service/patient"
	"github.com/gatovet/clinic-api/pkg/httputil"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.PUT("/:id/weight", h.UpdateWeight)
		patients.POST("/:id/vaccines", h.AddVaccine)
		patients.DELETE("/:id/vaccines/:index", h.RemoveVaccine)
		patients.POST("/:id/notes", h.AppendNote)
		patients.GET("/:id/medical-records", h.MedicalHistory)
	}

	// Clinical fields are edited by clinical staff only.
	r.PUT("/medical-records/:id", auth.RequireRole(model.RoleDoctor, model.RoleAssistant), h.UpdateMedicalRecord)

	owners := r.Group("/owners")
	{
		owners.POST("", h.CreateOwner)
		owners.GET("", h.ListOwners)
		owners.GET("/:id", h.GetOwner)
		owners.PUT("/:id", h.UpdateOwner)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	p, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithCreated(c, p)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid patient ID"))
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListPatients(c.Request.Context())
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid patient ID"))
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	p, err := h.service.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) UpdateWeight(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid patient ID"))
		return
	}

	var req model.UpdateWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.UpdateWeight(c.Request.Context(), id, req.Weight); err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"weight": req.Weight})
}

func (h *Handler) AddVaccine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid patient ID"))
		return
	}

	var req model.AddVaccineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	vaccines, err := h.service.AddVaccine(c.Request.Context(), id, req.Name)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"vaccines": vaccines})
}

func (h *Handler) RemoveVaccine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid patient ID"))
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid vaccine index"))
		return
	}

	vaccines, err := h.service.RemoveVaccine(c.Request.Context(), id, index)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"vaccines": vaccines})
}

func (h *Handler) AppendNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid patient ID"))
		return
	}

	var req model.AppendNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.AppendNote(c.Request.Context(), id, req.Note); err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) MedicalHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid patient ID"))
		return
	}

	filters := &model.RecordFilters{}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid start_date"))
			return
		}
		filters.StartDate = t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid end_date"))
			return
		}
		filters.EndDate = t
	}

	records, err := h.service.MedicalHistory(c.Request.Context(), id, filters)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, records)
}

func (h *Handler) UpdateMedicalRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid record ID"))
		return
	}

	var req model.UpdateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	record, err := h.service.UpdateMedicalRecord(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, record)
}

func (h *Handler) CreateOwner(c *gin.Context) {
	var req model.CreateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	owner, err := h.service.CreateOwner(c.Request.Context(), &req)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithCreated(c, owner)
}

func (h *Handler) GetOwner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid owner ID"))
		return
	}

	owner, err := h.service.GetOwner(c.Request.Context(), id)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, owner)
}

func (h *Handler) ListOwners(c *gin.Context) {
	owners, err := h.service.ListOwners(c.Request.Context())
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, owners)
}

func (h *Handler) UpdateOwner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid owner ID"))
		return
	}

	var req model.UpdateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	owner, err := h.service.UpdateOwner(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, owner)
}
