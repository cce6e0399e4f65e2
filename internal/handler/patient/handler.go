package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/service/prescription"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// Handler serves the patient directory derived from appointments
type Handler struct {
	svc *prescription.Service
}

func NewHandler(svc *prescription.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patients", h.ListPatients)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.svc.Patients(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, patients)
}
