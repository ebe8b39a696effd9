package workflow

import (
	"context"

	"github.com/ukydev/bus-maintenance/internal/apperr"
	"github.com/ukydev/bus-maintenance/internal/authz"
	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dashboard is a role-specific summary computed from the ticket set on every
// request.
type Dashboard struct {
	Role                 models.Role    `json:"role"`
	Counts               map[string]int `json:"counts"`
	TotalProcessedAmount *float64       `json:"totalProcessedAmount,omitempty"`
}

type dashboardFunc func(ctx context.Context, e *Engine, actor authz.Actor) (*Dashboard, error)

var dashboards = map[models.Role]dashboardFunc{
	models.RoleServiceCreator:  serviceCreatorDashboard,
	models.RoleSupervisor:      supervisorDashboard,
	models.RoleVendor:          vendorDashboard,
	models.RolePurchaseManager: purchaseManagerDashboard,
}

// GetDashboard returns the dashboard for the actor's role.
func (e *Engine) GetDashboard(ctx context.Context, actor authz.Actor) (*Dashboard, error) {
	if err := authz.Authorize(actor, authz.ActionViewDashboard); err != nil {
		return nil, err
	}
	build, ok := dashboards[actor.Role]
	if !ok {
		return nil, apperr.Forbidden("no dashboard for role %q", actor.Role)
	}
	return build(ctx, e, actor)
}

func serviceCreatorDashboard(ctx context.Context, e *Engine, actor authz.Actor) (*Dashboard, error) {
	by, total, err := e.countTickets(ctx, models.TicketFilter{CreatedBy: ptr(actor.ID)})
	if err != nil {
		return nil, err
	}
	return &Dashboard{Role: actor.Role, Counts: map[string]int{
		"totalTickets":        total,
		"pendingTickets":      by[models.TicketPending],
		"approvedTickets":     by[models.TicketApproved],
		"acknowledgedTickets": by[models.TicketAcknowledged],
		"completedTickets":    by[models.TicketCompleted],
	}}, nil
}

func supervisorDashboard(ctx context.Context, e *Engine, actor authz.Actor) (*Dashboard, error) {
	by, total, err := e.countTickets(ctx, models.TicketFilter{})
	if err != nil {
		return nil, err
	}
	return &Dashboard{Role: actor.Role, Counts: map[string]int{
		"totalTickets":            total,
		"pendingTickets":          by[models.TicketPending],
		"approvedTickets":         by[models.TicketApproved],
		"invoiceSubmittedTickets": by[models.TicketInvoiceSubmitted],
		"invoiceAcceptedTickets":  by[models.TicketInvoiceAccepted],
		"completedTickets":        by[models.TicketCompleted],
	}}, nil
}

func vendorDashboard(ctx context.Context, e *Engine, actor authz.Actor) (*Dashboard, error) {
	by, total, err := e.countTickets(ctx, models.TicketFilter{VendorID: ptr(actor.ID)})
	if err != nil {
		return nil, err
	}
	return &Dashboard{Role: actor.Role, Counts: map[string]int{
		"totalTickets":        total,
		"approvedTickets":     by[models.TicketApproved],
		"acknowledgedTickets": by[models.TicketAcknowledged],
		"activeTickets":       total - by[models.TicketCompleted],
		"invoicesSubmitted":   by[models.TicketInvoiceSubmitted],
		"completedTickets":    by[models.TicketCompleted],
	}}, nil
}

func purchaseManagerDashboard(ctx context.Context, e *Engine, actor authz.Actor) (*Dashboard, error) {
	tickets, err := e.store.Tickets.FindTickets(ctx, models.TicketFilter{Statuses: purchaseStatuses})
	if err != nil {
		return nil, apperr.Unexpected("list tickets", err)
	}
	counts := map[string]int{"totalCompletedTickets": 0, "invoiceAcceptedTickets": 0}
	var invoiceIDs []primitive.ObjectID
	for _, t := range tickets {
		switch t.Status {
		case models.TicketCompleted:
			counts["totalCompletedTickets"]++
			if t.InvoiceID != nil {
				invoiceIDs = append(invoiceIDs, *t.InvoiceID)
			}
		case models.TicketInvoiceAccepted:
			counts["invoiceAcceptedTickets"]++
		}
	}

	invoices, err := e.store.Invoices.FindInvoicesByIDs(ctx, invoiceIDs)
	if err != nil {
		return nil, apperr.Unexpected("list invoices", err)
	}
	var amount float64
	for _, inv := range invoices {
		if inv.Status == models.InvoiceApproved {
			amount += inv.Amount
		}
	}
	return &Dashboard{Role: actor.Role, Counts: counts, TotalProcessedAmount: &amount}, nil
}

func (e *Engine) countTickets(ctx context.Context, filter models.TicketFilter) (map[models.TicketStatus]int, int, error) {
	tickets, err := e.store.Tickets.FindTickets(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Unexpected("list tickets", err)
	}
	by := make(map[models.TicketStatus]int, len(models.TicketStatuses))
	for _, t := range tickets {
		by[t.Status]++
	}
	return by, len(tickets), nil
}
