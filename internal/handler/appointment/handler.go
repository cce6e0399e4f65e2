package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/appointment"
	"github.com/jwalitptl/clinic-api/internal/service/queue"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	svc   *appointment.Service
	queue *queue.Service
}

func NewHandler(svc *appointment.Service, queue *queue.Service) *Handler {
	return &Handler{
		svc:   svc,
		queue: queue,
	}
}

// RegisterRoutes adds the read-only views both roles share
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/appointments", h.ListAppointments)
	r.GET("/token", h.Token)
}

// RegisterBookingRoutes adds front desk booking
func (h *Handler) RegisterBookingRoutes(r *gin.RouterGroup) {
	r.POST("/appointments", h.CreateAppointment)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	apt, err := h.svc.Book(c.Request.Context(), &req, middleware.Identity(c).UID)
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.svc.ListRecent(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

// Token returns today's numbered queue
func (h *Handler) Token(c *gin.Context) {
	entries, err := h.queue.Today(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, entries)
}
