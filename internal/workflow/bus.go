package workflow

import (
	"context"
	"errors"

	"github.com/ukydev/bus-maintenance/internal/apperr"
	"github.com/ukydev/bus-maintenance/internal/authz"
	"github.com/ukydev/bus-maintenance/internal/db"
	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateBus registers a bus and fixes its vendor.
func (e *Engine) CreateBus(ctx context.Context, actor authz.Actor, req models.CreateBusRequest) (*models.Bus, error) {
	if err := authz.Authorize(actor, authz.ActionCreateBus); err != nil {
		return nil, err
	}
	now := e.now()
	if err := req.Validate(now); err != nil {
		return nil, err
	}
	vendorID, err := parseID("vendorId", req.VendorID)
	if err != nil {
		return nil, err
	}
	vendor, err := e.loadUser(ctx, vendorID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("vendor")
		}
		return nil, err
	}
	if vendor.Role != models.RoleVendor {
		return nil, apperr.Validation("vendorId", "must reference a user with role vendor")
	}

	bus := models.Bus{
		ID:                 primitive.NewObjectID(),
		ChassisNumber:      req.ChassisNumber,
		FleetNumber:        req.FleetNumber,
		RegistrationNumber: req.RegistrationNumber,
		Make:               req.Make,
		Model:              req.Model,
		Year:               req.Year,
		Engine:             req.Engine,
		AC:                 req.AC,
		Tyre:               req.Tyre,
		Transmission:       req.Transmission,
		BrakePad:           req.BrakePad,
		VendorID:           vendor.ID,
		CreatedBy:          actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := e.store.Buses.InsertBus(ctx, bus); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apperr.Conflict("a bus with this chassis, fleet or registration number already exists")
		}
		return nil, apperr.Unexpected("insert bus", err)
	}
	return &bus, nil
}

// GetBus returns one bus.
func (e *Engine) GetBus(ctx context.Context, actor authz.Actor, busID string) (*models.Bus, error) {
	if err := authz.Authorize(actor, authz.ActionViewBuses); err != nil {
		return nil, err
	}
	id, err := parseID("bus id", busID)
	if err != nil {
		return nil, err
	}
	return e.loadBus(ctx, id)
}

// ListBuses returns every bus.
func (e *Engine) ListBuses(ctx context.Context, actor authz.Actor) ([]models.Bus, error) {
	if err := authz.Authorize(actor, authz.ActionViewBuses); err != nil {
		return nil, err
	}
	buses, err := e.store.Buses.FindBuses(ctx)
	if err != nil {
		return nil, apperr.Unexpected("list buses", err)
	}
	return buses, nil
}
