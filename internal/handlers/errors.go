package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

var errorMessages = map[string]string{
	"branch_not_found":      "Filial não encontrada.",
	"booking_not_found":     "Reserva não encontrada.",
	"service_not_found":     "Serviço não encontrado.",
	"service_inactive":      "Serviço indisponível.",
	"staff_not_found":       "Profissional não encontrado.",
	"staff_not_eligible":    "Profissional não atende esse serviço.",
	"date_out_of_window":    "Data fora da janela de agendamento.",
	"too_soon":              "Horário inválido.",
	"empty_chain":           "Nenhum serviço informado.",
	"chain_gap":             "Os serviços precisam ser consecutivos.",
	"invalid_assignment":    "Horário inválido.",
	"off_grid_start":        "Horário fora da grade de 15 minutos.",
	"outside_working_hours": "Fora do horário de atendimento.",
	"slot_unavailable":      "Horário indisponível para essa reserva.",
	"invalid_state":         "A reserva não permite mais essa operação.",
	"not_booking_owner":     "Reserva pertence a outro cliente.",
	"invalid_request":       "Dados inválidos.",
	"slot_conflict":         "Horário acabou de ser ocupado. Recalcule a disponibilidade e tente de novo.",
}

func messageFor(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "Erro ao processar a solicitação."
}

// respondError traduz a taxonomia do core para HTTP: conflito de commit em
// 409 (o cliente recalcula e tenta de novo), validação em 400/403/404, e
// qualquer outra coisa em 500.
func respondError(c *gin.Context, err error) {
	if httperr.IsConflict(err) {
		httperr.Conflict(c, err.Error(), messageFor(err.Error()))
		return
	}

	if be, ok := httperr.AsBusiness(err); ok {
		switch be.Code {
		case "branch_not_found", "booking_not_found", "service_not_found", "staff_not_found":
			httperr.NotFound(c, be.Code, messageFor(be.Code))
		case "not_booking_owner":
			httperr.Forbidden(c, be.Code, messageFor(be.Code))
		default:
			httperr.BadRequest(c, be.Code, messageFor(be.Code))
		}
		return
	}

	httperr.Internal(c, "internal_error", "Erro interno.")
}
