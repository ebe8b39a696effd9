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

// RequestRepair escalates an acknowledged ticket into a repair request.
func (e *Engine) RequestRepair(ctx context.Context, actor authz.Actor, ticketID string, in models.RepairRequestInput) (*TicketRepair, error) {
	if err := authz.Authorize(actor, authz.ActionRequestRepair); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var req models.RepairRequest
	ticket, err := e.apply(ctx, actor, ticketID, requestRepair, func(t *models.Ticket, now time.Time) error {
		req = models.RepairRequest{
			ID:             primitive.NewObjectID(),
			BusID:          t.BusID,
			VendorID:       actor.ID,
			TicketID:       ptr(t.ID),
			Description:    in.Description,
			RepairCategory: in.RepairCategory,
			Status:         models.RepairRequestPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := e.store.RepairRequests.InsertRepairRequest(ctx, req); err != nil {
			return apperr.Unexpected("insert repair request", err)
		}
		t.RepairRequestID = ptr(req.ID)
		setOnce(&t.RepairRequestedAt, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TicketRepair{Ticket: ticket, RepairRequest: &req}, nil
}

// SubmitRepairRequest creates a repair request either from a ticket or
// directly against a bus. Exactly one of in.TicketID and in.BusID must be set.
func (e *Engine) SubmitRepairRequest(ctx context.Context, actor authz.Actor, in models.RepairRequestInput) (*TicketRepair, error) {
	if err := authz.Authorize(actor, authz.ActionSubmitRepairRequest); err != nil {
		return nil, err
	}
	switch {
	case in.TicketID != "" && in.BusID != "":
		return nil, apperr.Validation("", "only one of ticketId or busId may be set")
	case in.TicketID != "":
		return e.RequestRepair(ctx, actor, in.TicketID, in)
	case in.BusID == "":
		return nil, apperr.Validation("", "one of ticketId or busId is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	busID, err := parseID("busId", in.BusID)
	if err != nil {
		return nil, err
	}
	bus, err := e.loadBus(ctx, busID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	req := models.RepairRequest{
		ID:             primitive.NewObjectID(),
		BusID:          bus.ID,
		VendorID:       actor.ID,
		Description:    in.Description,
		RepairCategory: in.RepairCategory,
		Status:         models.RepairRequestPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.store.RepairRequests.InsertRepairRequest(ctx, req); err != nil {
		return nil, apperr.Unexpected("insert repair request", err)
	}
	return &TicketRepair{RepairRequest: &req}, nil
}

// ResolveRepairRequest settles a pending repair request as resolved or
// rejected. The linked ticket, if any, is left as it is.
func (e *Engine) ResolveRepairRequest(ctx context.Context, actor authz.Actor, requestID string, in models.ResolveRepairRequestInput) (*models.RepairRequest, error) {
	if err := authz.Authorize(actor, authz.ActionResolveRepairRequest); err != nil {
		return nil, err
	}
	if in.Status != models.RepairRequestResolved && in.Status != models.RepairRequestRejected {
		return nil, apperr.Validation("status", "must be resolved or rejected")
	}
	id, err := parseID("repair request id", requestID)
	if err != nil {
		return nil, err
	}
	req, err := e.store.RepairRequests.FindRepairRequestByID(ctx, id)
	if err != nil {
		return nil, lookupError("repair request", err)
	}
	if req.Status != models.RepairRequestPending {
		return nil, apperr.InvalidTransition("repair request %s is already %s", id.Hex(), req.Status)
	}

	now := e.now()
	req.Status = in.Status
	req.ResolvedBy = ptr(actor.ID)
	if in.Status == models.RepairRequestResolved {
		req.ResolvedAt = &now
	} else {
		req.RejectedAt = &now
	}
	req.UpdatedAt = now
	err = e.store.RepairRequests.ReplaceRepairRequest(ctx, *req, models.RepairRequestPending)
	switch {
	case err == nil:
		return req, nil
	case errors.Is(err, db.ErrStale):
		return nil, apperr.InvalidTransition("repair request %s was already resolved", id.Hex())
	case errors.Is(err, db.ErrNotFound):
		return nil, apperr.NotFound("repair request")
	default:
		return nil, apperr.Unexpected("update repair request", err)
	}
}

// ListPendingRepairRequests returns the repair requests awaiting resolution.
func (e *Engine) ListPendingRepairRequests(ctx context.Context, actor authz.Actor) ([]models.RepairRequest, error) {
	if err := authz.Authorize(actor, authz.ActionViewRepairRequests); err != nil {
		return nil, err
	}
	reqs, err := e.store.RepairRequests.FindRepairRequests(ctx, models.RepairRequestPending)
	if err != nil {
		return nil, apperr.Unexpected("list repair requests", err)
	}
	return reqs, nil
}
