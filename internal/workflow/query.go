package workflow

import (
	"context"
	"slices"

	"github.com/ukydev/bus-maintenance/internal/apperr"
	"github.com/ukydev/bus-maintenance/internal/authz"
	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketQuery is a caller's ticket listing filter. Ids are hex strings; Mine
// limits the result to tickets the actor created.
type TicketQuery struct {
	Statuses  []models.TicketStatus
	BusID     string
	VendorID  string
	CreatedBy string
	Mine      bool
}

// purchaseStatuses are the ticket states visible to a purchase manager.
var purchaseStatuses = []models.TicketStatus{models.TicketInvoiceAccepted, models.TicketCompleted}

// GetTicket returns one ticket. Vendors only see their own tickets and
// purchase managers only see tickets past invoice acceptance.
func (e *Engine) GetTicket(ctx context.Context, actor authz.Actor, ticketID string) (*models.Ticket, error) {
	if err := authz.Authorize(actor, authz.ActionViewTickets); err != nil {
		return nil, err
	}
	id, err := parseID("ticket id", ticketID)
	if err != nil {
		return nil, err
	}
	ticket, err := e.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case models.RoleVendor:
		if ticket.VendorID != actor.ID {
			return nil, apperr.Forbidden("ticket %s is assigned to another vendor", id.Hex())
		}
	case models.RolePurchaseManager:
		if !slices.Contains(purchaseStatuses, ticket.Status) {
			return nil, apperr.Forbidden("ticket %s is not yet invoiced", id.Hex())
		}
	}
	return ticket, nil
}

// ListTickets returns the tickets matching q within the actor's scope, newest
// first.
func (e *Engine) ListTickets(ctx context.Context, actor authz.Actor, q TicketQuery) ([]models.Ticket, error) {
	if err := authz.Authorize(actor, authz.ActionViewTickets); err != nil {
		return nil, err
	}
	filter, empty, err := scopeFilter(actor, q)
	if err != nil {
		return nil, err
	}
	if empty {
		return []models.Ticket{}, nil
	}
	tickets, err := e.store.Tickets.FindTickets(ctx, filter)
	if err != nil {
		return nil, apperr.Unexpected("list tickets", err)
	}
	return tickets, nil
}

// scopeFilter turns q into a store filter narrowed to what actor may see.
// empty is set when the scope rules out every ticket.
func scopeFilter(actor authz.Actor, q TicketQuery) (filter models.TicketFilter, empty bool, err error) {
	for _, s := range q.Statuses {
		if !models.IsValidTicketStatus(s) {
			return filter, false, apperr.Validation("status", "unknown ticket status "+string(s))
		}
	}
	filter.Statuses = q.Statuses
	if filter.BusID, err = optionalID("busId", q.BusID); err != nil {
		return filter, false, err
	}
	if filter.VendorID, err = optionalID("vendorId", q.VendorID); err != nil {
		return filter, false, err
	}
	if filter.CreatedBy, err = optionalID("createdBy", q.CreatedBy); err != nil {
		return filter, false, err
	}
	if q.Mine {
		filter.CreatedBy = ptr(actor.ID)
	}

	switch actor.Role {
	case models.RoleVendor:
		if filter.VendorID != nil && *filter.VendorID != actor.ID {
			return filter, true, nil
		}
		filter.VendorID = ptr(actor.ID)
	case models.RolePurchaseManager:
		if len(filter.Statuses) == 0 {
			filter.Statuses = purchaseStatuses
			break
		}
		var allowed []models.TicketStatus
		for _, s := range filter.Statuses {
			if slices.Contains(purchaseStatuses, s) {
				allowed = append(allowed, s)
			}
		}
		if len(allowed) == 0 {
			return filter, true, nil
		}
		filter.Statuses = allowed
	}
	return filter, false, nil
}

func optionalID(field, hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := parseID(field, hex)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
