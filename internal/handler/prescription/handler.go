package prescription

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/prescription"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	svc *prescription.Service
}

func NewHandler(svc *prescription.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.GET("", h.ListPrescriptions)
		prescriptions.GET("/:id", h.GetPrescription)

		drafts := prescriptions.Group("/drafts")
		drafts.POST("", h.OpenDraft)
		drafts.GET("/:draftId", h.GetDraft)
		drafts.DELETE("/:draftId", h.DiscardDraft)
		drafts.PUT("/:draftId/patient", h.SelectPatient)
		drafts.PATCH("/:draftId/fields", h.SetField)
		drafts.GET("/:draftId/catalog", h.SearchCatalog)
		drafts.POST("/:draftId/medicines", h.AddMedicine)
		drafts.PATCH("/:draftId/medicines/:medicineId", h.UpdateLineItem)
		drafts.DELETE("/:draftId/medicines/:medicineId", h.RemoveLineItem)
		drafts.POST("/:draftId/submit", h.Submit)
	}
}

// DraftView is a draft as the authoring view renders it
type DraftView struct {
	ID      string                  `json:"id"`
	State   prescription.State      `json:"state"`
	Draft   model.PrescriptionDraft `json:"draft"`
	Error   interface{}             `json:"error,omitempty"`
	Warning string                  `json:"warning,omitempty"`
}

func newDraftView(d *prescription.Draft) DraftView {
	view := DraftView{
		ID:    d.ID,
		State: d.Form.State(),
		Draft: d.Form.Draft(),
	}

	var verr *prescription.ValidationError
	if err := d.Form.LastError(); err != nil {
		if errors.As(err, &verr) {
			view.Error = verr
		} else {
			view.Error = err.Error()
		}
	}
	return view
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.Identity(c).UID)
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) GetPrescription(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), middleware.Identity(c).UID, c.Param("id"))
	if err != nil {
		h.respondFormError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) OpenDraft(c *gin.Context) {
	draft, err := h.svc.Drafts().Open(c.Request.Context(), middleware.Identity(c).UID)
	if err != nil {
		c.Error(err)
		return
	}

	httputil.RespondWithCreated(c, newDraftView(draft))
}

func (h *Handler) GetDraft(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	httputil.RespondWithSuccess(c, newDraftView(draft))
}

// DiscardDraft is called when the authoring view is left without submitting
func (h *Handler) DiscardDraft(c *gin.Context) {
	if err := h.svc.Drafts().Discard(middleware.Identity(c).UID, c.Param("draftId")); err != nil {
		h.respondFormError(c, err)
		return
	}

	httputil.RespondWithRedirect(c, http.StatusOK, "draft discarded", prescription.ListPath)
}

func (h *Handler) SelectPatient(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	var req model.SelectPatientRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	if _, err := h.svc.SelectPatient(c.Request.Context(), draft, req.PatientID); err != nil {
		h.respondFormError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, newDraftView(draft))
}

func (h *Handler) SetField(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	var req model.FieldUpdateRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	if err := draft.Form.SetField(req.Field, req.Value); err != nil {
		h.respondFormError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, newDraftView(draft))
}

// SearchCatalog filters the draft's live catalog by ?q=
func (h *Handler) SearchCatalog(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	select {
	case <-draft.Catalog.Loaded():
	case <-c.Request.Context().Done():
		httputil.RespondWithStatus(c, http.StatusServiceUnavailable, "catalog is still loading", nil)
		return
	}

	httputil.RespondWithSuccess(c, draft.Catalog.Search(c.Query("q")))
}

// AddMedicine answers a duplicate medicine with 200 and a warning; the draft
// is left as it was.
func (h *Handler) AddMedicine(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	var req model.AddMedicineRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	err := h.svc.AddMedicine(c.Request.Context(), draft, req.MedicineID)
	if errors.Is(err, prescription.ErrMedicineAlreadyAdded) {
		view := newDraftView(draft)
		view.Warning = err.Error()
		httputil.RespondWithSuccess(c, view)
		return
	}
	if err != nil {
		h.respondFormError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, newDraftView(draft))
}

func (h *Handler) UpdateLineItem(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	var req model.FieldUpdateRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	if err := draft.Form.UpdateLineItem(c.Param("medicineId"), req.Field, req.Value); err != nil {
		h.respondFormError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, newDraftView(draft))
}

func (h *Handler) RemoveLineItem(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	if err := draft.Form.RemoveLineItem(c.Param("medicineId")); err != nil {
		h.respondFormError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, newDraftView(draft))
}

// Submit persists the draft. Validation failures keep the draft open and
// return 422 with the failed rule.
func (h *Handler) Submit(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	record, err := h.svc.Submit(c.Request.Context(), draft, middleware.Identity(c))
	if err != nil {
		var verr *prescription.ValidationError
		if errors.As(err, &verr) {
			httputil.RespondWithStatus(c, verr.StatusCode(), verr.Error(), newDraftView(draft))
			return
		}
		h.respondFormError(c, err)
		return
	}

	httputil.RespondWithRedirect(c, http.StatusCreated, record, prescription.ListPath)
}

func (h *Handler) draft(c *gin.Context) (*prescription.Draft, bool) {
	draft, err := h.svc.Drafts().Get(middleware.Identity(c).UID, c.Param("draftId"))
	if err != nil {
		h.respondFormError(c, err)
		return nil, false
	}
	return draft, true
}

func (h *Handler) respondFormError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, prescription.ErrDraftNotFound),
		errors.Is(err, prescription.ErrPrescriptionNotFound),
		errors.Is(err, prescription.ErrPatientNotFound),
		errors.Is(err, prescription.ErrMedicineNotFound):
		httputil.RespondWithStatus(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, prescription.ErrUnknownField),
		errors.Is(err, prescription.ErrInvalidTiming),
		errors.Is(err, prescription.ErrInvalidStatus):
		httputil.RespondWithStatus(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, prescription.ErrFormClosed),
		errors.Is(err, prescription.ErrSubmitInProgress):
		httputil.RespondWithStatus(c, http.StatusConflict, err.Error(), nil)
	default:
		c.Error(err)
	}
}
