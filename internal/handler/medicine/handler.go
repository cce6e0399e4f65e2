package medicine

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/catalog"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	medicines repository.MedicineRepository
}

func NewHandler(medicines repository.MedicineRepository) *Handler {
	return &Handler{medicines: medicines}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/medicines", h.Search)
}

// Search lists the catalog by name, filtered by ?q= when given
func (h *Handler) Search(c *gin.Context) {
	medicines, err := h.medicines.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, catalog.Filter(medicines, c.Query("q")))
}
