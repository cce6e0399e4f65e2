package account

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// Handler serves the account information card shown on both dashboards
type Handler struct {
	staff repository.StaffRepository
}

func NewHandler(staff repository.StaffRepository) *Handler {
	return &Handler{staff: staff}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Dashboard)
}

type Dashboard struct {
	Identity *model.Identity     `json:"identity"`
	Profile  *model.StaffProfile `json:"profile"`
}

func (h *Handler) Dashboard(c *gin.Context) {
	current := middleware.Identity(c)

	profile, err := h.staff.Get(c.Request.Context(), current.UID)
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, Dashboard{
		Identity: current,
		Profile:  profile,
	})
}
