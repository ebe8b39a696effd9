package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/bus-maintenance/internal/apperr"
	"github.com/ukydev/bus-maintenance/internal/authz"
	"github.com/ukydev/bus-maintenance/internal/db"
	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmitInvoice creates a pending invoice and moves the ticket to
// invoiceSubmitted. A rejected ticket may be invoiced again; the new invoice
// replaces the ticket's reference to the old one.
func (e *Engine) SubmitInvoice(ctx context.Context, actor authz.Actor, ticketID string, req models.SubmitInvoiceRequest) (*TicketInvoice, error) {
	if err := authz.Authorize(actor, authz.ActionSubmitInvoice); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var invoice models.Invoice
	ticket, err := e.apply(ctx, actor, ticketID, submitInvoice, func(t *models.Ticket, now time.Time) error {
		invoice = models.Invoice{
			ID:          primitive.NewObjectID(),
			TicketID:    t.ID,
			VendorID:    actor.ID,
			Amount:      req.Amount,
			Description: req.Description,
			Status:      models.InvoicePending,
			SubmittedAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := e.store.Invoices.InsertInvoice(ctx, invoice); err != nil {
			return apperr.Unexpected("insert invoice", err)
		}
		t.InvoiceID = ptr(invoice.ID)
		setOnce(&t.InvoiceSubmittedAt, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TicketInvoice{Ticket: ticket, Invoice: &invoice}, nil
}

// AcceptInvoice approves the invoice with invoiceID and its ticket.
func (e *Engine) AcceptInvoice(ctx context.Context, actor authz.Actor, invoiceID string) (*TicketInvoice, error) {
	return e.decideByInvoice(ctx, actor, invoiceID, true)
}

// RejectInvoice rejects the invoice with invoiceID and its ticket.
func (e *Engine) RejectInvoice(ctx context.Context, actor authz.Actor, invoiceID string) (*TicketInvoice, error) {
	return e.decideByInvoice(ctx, actor, invoiceID, false)
}

// AcceptTicketInvoice approves the current invoice of the ticket with ticketID.
func (e *Engine) AcceptTicketInvoice(ctx context.Context, actor authz.Actor, ticketID string) (*TicketInvoice, error) {
	return e.decide(ctx, actor, ticketID, nil, true)
}

// RejectTicketInvoice rejects the current invoice of the ticket with ticketID.
func (e *Engine) RejectTicketInvoice(ctx context.Context, actor authz.Actor, ticketID string) (*TicketInvoice, error) {
	return e.decide(ctx, actor, ticketID, nil, false)
}

func (e *Engine) decideByInvoice(ctx context.Context, actor authz.Actor, invoiceID string, approve bool) (*TicketInvoice, error) {
	if err := authz.Authorize(actor, authz.ActionDecideInvoice); err != nil {
		return nil, err
	}
	id, err := parseID("invoice id", invoiceID)
	if err != nil {
		return nil, err
	}
	invoice, err := e.loadInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoicePending && invoice.Status != decisionStatus(approve) {
		return nil, apperr.InvalidTransition("invoice %s is already %s", id.Hex(), invoice.Status)
	}
	return e.decide(ctx, actor, invoice.TicketID.Hex(), &invoice.ID, approve)
}

// decide settles the ticket's current invoice, then flips the ticket. When
// expected is set it must be the ticket's current invoice. A ticket still in
// invoiceSubmitted whose invoice already carries the requested decision only
// has its own write redone.
func (e *Engine) decide(ctx context.Context, actor authz.Actor, ticketID string, expected *primitive.ObjectID, approve bool) (*TicketInvoice, error) {
	tr := acceptInvoice
	if !approve {
		tr = rejectInvoice
	}

	var invoice *models.Invoice
	ticket, err := e.apply(ctx, actor, ticketID, tr, func(t *models.Ticket, now time.Time) error {
		if t.InvoiceID == nil {
			return apperr.InvalidTransition("ticket %s has no invoice", t.ID.Hex())
		}
		if expected != nil && *expected != *t.InvoiceID {
			return apperr.InvalidTransition("invoice %s is not the current invoice of ticket %s", expected.Hex(), t.ID.Hex())
		}
		inv, err := e.loadInvoice(ctx, *t.InvoiceID)
		if err != nil {
			return err
		}
		if inv.Status != decisionStatus(approve) {
			if err := e.settleInvoice(ctx, actor, inv, approve, now); err != nil {
				return err
			}
		}
		invoice = inv

		t.InvoiceApprovedBy = ptr(actor.ID)
		if approve {
			setOnce(&t.InvoiceAcceptedAt, now)
		} else {
			setOnce(&t.InvoiceRejectedAt, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TicketInvoice{Ticket: ticket, Invoice: invoice}, nil
}

func decisionStatus(approve bool) models.InvoiceStatus {
	if approve {
		return models.InvoiceApproved
	}
	return models.InvoiceRejected
}

// settleInvoice records the single decision on a pending invoice.
func (e *Engine) settleInvoice(ctx context.Context, actor authz.Actor, inv *models.Invoice, approve bool, now time.Time) error {
	if inv.Status != models.InvoicePending {
		return apperr.InvalidTransition("invoice %s is already %s", inv.ID.Hex(), inv.Status)
	}
	if approve {
		inv.Status = models.InvoiceApproved
		inv.ApprovedBy = ptr(actor.ID)
		inv.ApprovedAt = &now
	} else {
		inv.Status = models.InvoiceRejected
		inv.RejectedBy = ptr(actor.ID)
		inv.RejectedAt = &now
	}
	inv.UpdatedAt = now
	err := e.store.Invoices.ReplaceInvoice(ctx, *inv, models.InvoicePending)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrStale):
		return apperr.InvalidTransition("invoice %s was already decided", inv.ID.Hex())
	case errors.Is(err, db.ErrNotFound):
		return apperr.NotFound("invoice")
	default:
		return apperr.Unexpected("update invoice", err)
	}
}

func (e *Engine) loadInvoice(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	inv, err := e.store.Invoices.FindInvoiceByID(ctx, id)
	if err != nil {
		return nil, lookupError("invoice", err)
	}
	return inv, nil
}
