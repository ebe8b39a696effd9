package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ukydev/bus-maintenance/internal/authz"
	"github.com/ukydev/bus-maintenance/internal/models"
	"github.com/ukydev/bus-maintenance/internal/workflow"
)

// WorkflowHandler exposes workflow commands over HTTP.
type WorkflowHandler struct {
	svc workflow.Service
}

// NewWorkflowHandler creates a handler over svc.
func NewWorkflowHandler(svc workflow.Service) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

// CreateBus handles POST /api/bus/create.
func (h *WorkflowHandler) CreateBus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req models.CreateBusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	bus, err := h.svc.CreateBus(r.Context(), actor, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, bus)
}

// GetBus handles GET /api/bus/{id}.
func (h *WorkflowHandler) GetBus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bus, err := h.svc.GetBus(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, bus)
}

// ListBuses handles GET /api/bus.
func (h *WorkflowHandler) ListBuses(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	buses, err := h.svc.ListBuses(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, buses)
}

// CreateTicket handles POST /api/tickets/create.
func (h *WorkflowHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req models.CreateTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ticket, err := h.svc.CreateTicket(r.Context(), actor, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, ticket)
}

// GetTicket handles GET /api/tickets/{id}.
func (h *WorkflowHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	ticket, err := h.svc.GetTicket(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ticket)
}

// ListTickets handles GET /api/tickets and GET /api/vendors/tickets. The status
// parameter takes a comma-separated list.
func (h *WorkflowHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	query := workflow.TicketQuery{
		BusID:     q.Get("busId"),
		VendorID:  q.Get("vendorId"),
		CreatedBy: q.Get("createdBy"),
		Mine:      q.Get("mine") == "true",
	}
	for _, s := range strings.Split(q.Get("status"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			query.Statuses = append(query.Statuses, models.TicketStatus(s))
		}
	}
	tickets, err := h.svc.ListTickets(r.Context(), actor, query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, tickets)
}

type ticketCommand func(ctx context.Context, actor authz.Actor, ticketID string) (*models.Ticket, error)

// transition adapts a body-less ticket command to a handler.
func transition(run ticketCommand) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		ticket, err := run(r.Context(), actor, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, ticket)
	}
}

// ApproveTicket handles PUT /api/tickets/approve/{id}.
func (h *WorkflowHandler) ApproveTicket(w http.ResponseWriter, r *http.Request) {
	transition(h.svc.ApproveTicket)(w, r)
}

// AcknowledgeTicket handles PUT /api/tickets/acknowledge/{id}.
func (h *WorkflowHandler) AcknowledgeTicket(w http.ResponseWriter, r *http.Request) {
	transition(h.svc.AcknowledgeTicket)(w, r)
}

// CompleteTicket handles PUT /api/tickets/complete/{id}.
func (h *WorkflowHandler) CompleteTicket(w http.ResponseWriter, r *http.Request) {
	transition(h.svc.CompleteTicket)(w, r)
}

// SubmitInvoice handles PUT /api/tickets/invoice/{id}.
func (h *WorkflowHandler) SubmitInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req models.SubmitInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.SubmitInvoice(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, res)
}

// DecideInvoice handles the invoice accept and reject routes. byTicket selects
// whether {id} names the ticket or the invoice.
func (h *WorkflowHandler) DecideInvoice(approve, byTicket bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		var (
			res *workflow.TicketInvoice
			err error
		)
		switch {
		case byTicket && approve:
			res, err = h.svc.AcceptTicketInvoice(r.Context(), actor, id)
		case byTicket:
			res, err = h.svc.RejectTicketInvoice(r.Context(), actor, id)
		case approve:
			res, err = h.svc.AcceptInvoice(r.Context(), actor, id)
		default:
			res, err = h.svc.RejectInvoice(r.Context(), actor, id)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, res)
	}
}

// RequestRepair handles PUT /api/tickets/request-repair/{id}.
func (h *WorkflowHandler) RequestRepair(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in models.RepairRequestInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.RequestRepair(r.Context(), actor, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, res)
}

// SubmitRepairRequest handles POST /api/repair-requests.
func (h *WorkflowHandler) SubmitRepairRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in models.RepairRequestInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.SubmitRepairRequest(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, res)
}

// ResolveRepairRequest handles PUT /api/repair-requests/status/{id}.
func (h *WorkflowHandler) ResolveRepairRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in models.ResolveRepairRequestInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.svc.ResolveRepairRequest(r.Context(), actor, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, req)
}

// ListPendingRepairRequests handles GET /api/repair-requests/pending.
func (h *WorkflowHandler) ListPendingRepairRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	reqs, err := h.svc.ListPendingRepairRequests(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, reqs)
}

// GetDashboard handles GET /api/users/dashboard.
func (h *WorkflowHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	d, err := h.svc.GetDashboard(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}
