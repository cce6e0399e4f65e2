package queue

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/queue"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// Handler serves the public queue display
type Handler struct {
	svc *queue.Service
}

func NewHandler(svc *queue.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/queue", h.Display)
}

type Display struct {
	Date    string             `json:"date"`
	Entries []model.QueueEntry `json:"entries"`
}

// Display returns the queue for ?date=YYYY-MM-DD, today by default
func (h *Handler) Display(c *gin.Context) {
	date := c.DefaultQuery("date", model.Today())
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		httputil.RespondWithStatus(c, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
		return
	}

	entries, err := h.svc.ForDate(c.Request.Context(), date)
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, Display{Date: date, Entries: entries})
}
