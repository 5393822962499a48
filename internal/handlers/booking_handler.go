package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	ucBooking "github.com/BruksfildServices01/salon-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	reschedule *ucBooking.Reschedule
	cancel     *ucBooking.CancelBooking
	complete   *ucBooking.CompleteBooking
	agenda     *ucBooking.ListAgenda
}

func NewBookingHandler(
	reschedule *ucBooking.Reschedule,
	cancel *ucBooking.CancelBooking,
	complete *ucBooking.CompleteBooking,
	agenda *ucBooking.ListAgenda,
) *BookingHandler {
	return &BookingHandler{
		reschedule: reschedule,
		cancel:     cancel,
		complete:   complete,
		agenda:     agenda,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type RescheduleRequest struct {
	Start string `json:"start" binding:"required"` // RFC3339, UTC
}

// ======================================================
// HELPERS
// ======================================================

func requesterFromContext(c *gin.Context) (role string, clientID uint, actorID *uint) {
	role = c.GetString(middleware.ContextRole)
	if v, ok := c.Get(middleware.ContextClientID); ok {
		clientID, _ = v.(uint)
	}
	if v, ok := c.Get(middleware.ContextActorID); ok {
		if id, isUint := v.(uint); isUint {
			actorID = &id
		}
	}
	return role, clientID, actorID
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *BookingHandler) Reschedule(c *gin.Context) {
	publicID := c.Param("id")

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "Horário inválido.")
		return
	}

	role, clientID, actorID := requesterFromContext(c)

	updated, err := h.reschedule.Execute(c.Request.Context(), ucBooking.RescheduleInput{
		BookingPublicID:   publicID,
		NewStart:          start,
		RequesterRole:     role,
		RequesterClientID: clientID,
		ActorID:           actorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.OK(c, updated)
}

// ======================================================
// CANCEL / COMPLETE
// ======================================================

func (h *BookingHandler) Cancel(c *gin.Context) {
	role, clientID, actorID := requesterFromContext(c)

	updated, err := h.cancel.Execute(c.Request.Context(), ucBooking.CancelBookingInput{
		BookingPublicID:   c.Param("id"),
		RequesterRole:     role,
		RequesterClientID: clientID,
		ActorID:           actorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.OK(c, updated)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	role, _, actorID := requesterFromContext(c)

	updated, err := h.complete.Execute(c.Request.Context(), ucBooking.CompleteBookingInput{
		BookingPublicID: c.Param("id"),
		RequesterRole:   role,
		ActorID:         actorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.OK(c, updated)
}

// ======================================================
// AGENDA
// ======================================================

func (h *BookingHandler) Agenda(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextActorID).(uint)
	branchID := c.MustGet(middleware.ContextBranchID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_params", "Data obrigatória.")
		return
	}

	apps, err := h.agenda.Execute(c.Request.Context(), ucBooking.ListAgendaInput{
		BranchID: branchID,
		StaffID:  staffID,
		Date:     dateStr,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.List(c, apps)
}
