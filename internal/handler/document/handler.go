package document

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatovet/clinic-api/internal/handler"
	"github.com/gatovet/clinic-api/internal/middleware"
	"github.com/gatovet/clinic-api/internal/service/document"
	"github.com/gatovet/clinic-api/pkg/httputil"
)

type Handler struct {
	service *document.Service
}

func NewHandler(service *document.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patients/:id/documents", h.ListByPatient)
}

// RegisterLegacyRoutes mounts the upload/delete endpoints the mobile client
// still calls. Their request and response shapes are frozen.
func (h *Handler) RegisterLegacyRoutes(r *gin.RouterGroup) {
	r.POST("/upload", h.Upload)
	r.DELETE("/delete", h.Delete)
}

func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo y paciente requeridos"})
		return
	}

	patientID, err := uuid.Parse(c.PostForm("patientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo y paciente requeridos"})
		return
	}

	input := document.AttachInput{
		PatientID: patientID,
		Name:      file.Filename,
	}
	if ct := file.Header.Get("Content-Type"); ct != "" {
		input.ContentType = &ct
	}
	size := file.Size
	input.Size = &size

	if raw := c.PostForm("medicalRecordId"); raw != "" {
		recordID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo y paciente requeridos"})
			return
		}
		input.MedicalRecordID = &recordID
	}
	if profileID, ok := middleware.ProfileID(c); ok {
		input.UploadedBy = &profileID
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al subir archivo"})
		return
	}
	defer src.Close()

	doc, err := h.service.Attach(c.Request.Context(), input, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al subir archivo"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) Delete(c *gin.Context) {
	var req struct {
		DocumentID string `json:"documentId"`
		URL        string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID == "" || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID y URL requeridos"})
		return
	}

	id, err := uuid.Parse(req.DocumentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID y URL requeridos"})
		return
	}

	if err := h.service.Detach(c.Request.Context(), id, req.URL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ListByPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid patient ID"))
		return
	}

	docs, err := h.service.ListByPatient(c.Request.Context(), id)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, docs)
}
