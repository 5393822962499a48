package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	ucBooking "github.com/BruksfildServices01/salon-scheduler/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	repo          domain.Repository
	availability  *ucBooking.GetAvailability
	bookableDates *ucBooking.ListBookableDates
	solveChain    *ucBooking.SolveChain
	commitPlan    *ucBooking.CommitPlan
}

func NewPublicHandler(
	repo domain.Repository,
	availability *ucBooking.GetAvailability,
	bookableDates *ucBooking.ListBookableDates,
	solveChain *ucBooking.SolveChain,
	commitPlan *ucBooking.CommitPlan,
) *PublicHandler {
	return &PublicHandler{
		repo:          repo,
		availability:  availability,
		bookableDates: bookableDates,
		solveChain:    solveChain,
		commitPlan:    commitPlan,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type ChainStepRequest struct {
	ServiceID uint   `json:"service_id" binding:"required"`
	StaffID   string `json:"staff_id"` // id numérico ou "any"
}

type SolveChainRequest struct {
	Date  string             `json:"date" binding:"required"` // YYYY-MM-DD
	Chain []ChainStepRequest `json:"chain" binding:"required"`
}

type AssignmentRequest struct {
	ServiceID uint   `json:"service_id" binding:"required"`
	StaffID   uint   `json:"staff_id" binding:"required"`
	Start     string `json:"start" binding:"required"` // RFC3339, UTC
}

type CreateBookingRequest struct {
	ClientName  string              `json:"client_name" binding:"required"`
	ClientPhone string              `json:"client_phone" binding:"required"`
	ClientEmail string              `json:"client_email"`
	Notes       string              `json:"notes"`
	Assignments []AssignmentRequest `json:"assignments" binding:"required"`
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	branch, ok := h.branchFromSlug(c)
	if !ok {
		return
	}

	services, err := h.repo.ListActiveServices(c.Request.Context(), branch.ID)
	if err != nil {
		httperr.Internal(c, "failed_to_list_services", "Erro ao listar serviços.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"branch":   branch,
		"services": services,
	})
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	branch, ok := h.branchFromSlug(c)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")
	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "Data e serviço obrigatórios.")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Serviço inválido.")
		return
	}

	var staffID uint64
	if s := c.Query("staff_id"); s != "" {
		staffID, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_staff_id", "Profissional inválido.")
			return
		}
	}

	date, err := parseDateInBranch(branch, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	result, err := h.availability.Execute(c.Request.Context(), ucBooking.AvailabilityInput{
		BranchID:  branch.ID,
		ServiceID: uint(serviceID),
		StaffID:   uint(staffID),
		Date:      date,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"staff": result,
	})
}

func (h *PublicHandler) AvailabilityDates(c *gin.Context) {
	branch, ok := h.branchFromSlug(c)
	if !ok {
		return
	}

	monthStr := c.Query("month")
	serviceIDStr := c.Query("service_id")
	if monthStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "Mês e serviço obrigatórios.")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Serviço inválido.")
		return
	}

	month, err := parseMonthInBranch(branch, monthStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Mês inválido.")
		return
	}

	dates, err := h.bookableDates.Execute(c.Request.Context(), ucBooking.BookableDatesInput{
		BranchID:  branch.ID,
		ServiceID: uint(serviceID),
		Year:      month.Year(),
		Month:     month.Month(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.List(c, dates)
}

////////////////////////////////////////////////////////
// CHAIN SOLVE
////////////////////////////////////////////////////////

func (h *PublicHandler) SolveChain(c *gin.Context) {
	branch, ok := h.branchFromSlug(c)
	if !ok {
		return
	}

	var req SolveChainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	date, err := parseDateInBranch(branch, req.Date)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	steps := make([]domain.ChainStep, 0, len(req.Chain))
	for _, s := range req.Chain {
		staffID, err := parseStaffChoice(s.StaffID)
		if err != nil {
			httperr.BadRequest(c, "invalid_staff_id", "Profissional inválido.")
			return
		}
		steps = append(steps, domain.ChainStep{
			ServiceID: s.ServiceID,
			StaffID:   staffID,
		})
	}

	plans, err := h.solveChain.Execute(c.Request.Context(), ucBooking.SolveChainInput{
		BranchID: branch.ID,
		Date:     date,
		Steps:    steps,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if plans == nil {
		plans = []domain.ChainPlan{}
	}
	httpresp.List(c, plans)
}

////////////////////////////////////////////////////////
// CREATE BOOKING
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateBooking(c *gin.Context) {
	branch, ok := h.branchFromSlug(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	assignments := make([]ucBooking.AssignmentInput, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		start, err := time.Parse(time.RFC3339, a.Start)
		if err != nil {
			httperr.BadRequest(c, "invalid_start", "Horário inválido.")
			return
		}
		assignments = append(assignments, ucBooking.AssignmentInput{
			ServiceID: a.ServiceID,
			StaffID:   a.StaffID,
			Start:     start,
		})
	}

	created, err := h.commitPlan.Execute(c.Request.Context(), ucBooking.CommitPlanInput{
		BranchID:    branch.ID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		Notes:       req.Notes,
		Assignments: assignments,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.Created(c, created)
}

////////////////////////////////////////////////////////
// HELPERS
////////////////////////////////////////////////////////

func (h *PublicHandler) branchFromSlug(c *gin.Context) (*models.Branch, bool) {
	slug := c.Param("slug")

	branch, err := h.repo.GetBranchBySlug(c.Request.Context(), slug)
	if err != nil {
		httperr.NotFound(c, "branch_not_found", "Filial não encontrada.")
		return nil, false
	}
	return branch, true
}

func parseStaffChoice(raw string) (uint, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || raw == "any" {
		return domain.StaffAny, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
