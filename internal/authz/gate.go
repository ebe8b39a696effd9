// Package authz decides which roles may perform which workflow actions.
package authz

import (
	"github.com/ukydev/bus-maintenance/internal/apperr"
	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action names a command an actor may request.
type Action string

const (
	ActionCreateBus            Action = "create_bus"
	ActionViewBuses            Action = "view_buses"
	ActionCreateVendor         Action = "create_vendor"
	ActionCreateTicket         Action = "create_ticket"
	ActionViewTickets          Action = "view_tickets"
	ActionApproveTicket        Action = "approve_ticket"
	ActionAcknowledgeTicket    Action = "acknowledge_ticket"
	ActionSubmitInvoice        Action = "submit_invoice"
	ActionRequestRepair        Action = "request_repair"
	ActionDecideInvoice        Action = "decide_invoice"
	ActionCompleteTicket       Action = "complete_ticket"
	ActionSubmitRepairRequest  Action = "submit_repair_request"
	ActionResolveRepairRequest Action = "resolve_repair_request"
	ActionViewRepairRequests   Action = "view_repair_requests"
	ActionViewDashboard        Action = "view_dashboard"
)

// Actor is an authenticated user performing a command.
type Actor struct {
	ID   primitive.ObjectID
	Role models.Role
}

type actionSet map[Action]struct{}

func allow(actions ...Action) actionSet {
	set := make(actionSet, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// capabilities is the static role to action table.
var capabilities = map[models.Role]actionSet{
	models.RoleServiceCreator: allow(
		ActionCreateBus, ActionViewBuses, ActionCreateVendor,
		ActionCreateTicket, ActionViewTickets,
		ActionResolveRepairRequest, ActionViewRepairRequests,
		ActionViewDashboard,
	),
	models.RoleSupervisor: allow(
		ActionCreateBus, ActionViewBuses,
		ActionCreateTicket, ActionViewTickets,
		ActionApproveTicket, ActionDecideInvoice,
		ActionResolveRepairRequest, ActionViewRepairRequests,
		ActionViewDashboard,
	),
	models.RoleVendor: allow(
		ActionViewBuses, ActionViewTickets,
		ActionAcknowledgeTicket, ActionSubmitInvoice, ActionRequestRepair,
		ActionCompleteTicket, ActionSubmitRepairRequest,
		ActionViewDashboard,
	),
	models.RolePurchaseManager: allow(
		ActionViewBuses, ActionViewTickets, ActionViewDashboard,
	),
}

// ownedActions must additionally be performed by the ticket's vendor.
var ownedActions = allow(
	ActionAcknowledgeTicket, ActionSubmitInvoice, ActionRequestRepair, ActionCompleteTicket,
)

// Can reports whether role may perform action.
func Can(role models.Role, action Action) bool {
	_, ok := capabilities[role][action]
	return ok
}

// RequiresOwnership reports whether action is limited to the ticket's vendor.
func RequiresOwnership(action Action) bool {
	_, ok := ownedActions[action]
	return ok
}

// Authorize returns a Forbidden error unless actor's role permits action.
func Authorize(actor Actor, action Action) error {
	if !Can(actor.Role, action) {
		return apperr.Forbidden("role %q may not %s", actor.Role, action)
	}
	return nil
}

// AuthorizeTicket checks the role table and, for vendor-owned actions, that
// actor is the vendor assigned to ticket.
func AuthorizeTicket(actor Actor, action Action, ticket *models.Ticket) error {
	if err := Authorize(actor, action); err != nil {
		return err
	}
	if RequiresOwnership(action) && ticket.VendorID != actor.ID {
		return apperr.Forbidden("ticket %s is assigned to another vendor", ticket.ID.Hex())
	}
	return nil
}
