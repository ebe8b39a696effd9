// Package workflow implements the ticket lifecycle: the transition table, the
// invoice and repair-request subflows and the role dashboards.
package workflow

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/ukydev/bus-maintenance/internal/apperr"
	"github.com/ukydev/bus-maintenance/internal/authz"
	"github.com/ukydev/bus-maintenance/internal/db"
	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is the command boundary exposed to transports.
type Service interface {
	CreateBus(ctx context.Context, actor authz.Actor, req models.CreateBusRequest) (*models.Bus, error)
	GetBus(ctx context.Context, actor authz.Actor, busID string) (*models.Bus, error)
	ListBuses(ctx context.Context, actor authz.Actor) ([]models.Bus, error)

	CreateTicket(ctx context.Context, actor authz.Actor, req models.CreateTicketRequest) (*models.Ticket, error)
	GetTicket(ctx context.Context, actor authz.Actor, ticketID string) (*models.Ticket, error)
	ListTickets(ctx context.Context, actor authz.Actor, q TicketQuery) ([]models.Ticket, error)
	ApproveTicket(ctx context.Context, actor authz.Actor, ticketID string) (*models.Ticket, error)
	AcknowledgeTicket(ctx context.Context, actor authz.Actor, ticketID string) (*models.Ticket, error)
	CompleteTicket(ctx context.Context, actor authz.Actor, ticketID string) (*models.Ticket, error)

	SubmitInvoice(ctx context.Context, actor authz.Actor, ticketID string, req models.SubmitInvoiceRequest) (*TicketInvoice, error)
	AcceptInvoice(ctx context.Context, actor authz.Actor, invoiceID string) (*TicketInvoice, error)
	RejectInvoice(ctx context.Context, actor authz.Actor, invoiceID string) (*TicketInvoice, error)
	AcceptTicketInvoice(ctx context.Context, actor authz.Actor, ticketID string) (*TicketInvoice, error)
	RejectTicketInvoice(ctx context.Context, actor authz.Actor, ticketID string) (*TicketInvoice, error)

	RequestRepair(ctx context.Context, actor authz.Actor, ticketID string, in models.RepairRequestInput) (*TicketRepair, error)
	SubmitRepairRequest(ctx context.Context, actor authz.Actor, in models.RepairRequestInput) (*TicketRepair, error)
	ResolveRepairRequest(ctx context.Context, actor authz.Actor, requestID string, in models.ResolveRepairRequestInput) (*models.RepairRequest, error)
	ListPendingRepairRequests(ctx context.Context, actor authz.Actor) ([]models.RepairRequest, error)

	GetDashboard(ctx context.Context, actor authz.Actor) (*Dashboard, error)
}

// TicketInvoice is a ticket together with the invoice a command touched.
type TicketInvoice struct {
	Ticket  *models.Ticket  `json:"ticket"`
	Invoice *models.Invoice `json:"invoice"`
}

// TicketRepair is a repair request and, when escalated from one, its ticket.
type TicketRepair struct {
	Ticket        *models.Ticket        `json:"ticket,omitempty"`
	RepairRequest *models.RepairRequest `json:"repairRequest"`
}

// Engine runs workflow commands against a Store.
type Engine struct {
	store *db.Store
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for transition timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a workflow engine over store.
func NewEngine(store *db.Store, opts ...Option) *Engine {
	e := &Engine{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ Service = (*Engine)(nil)

// transition is one row of the ticket state table.
type transition struct {
	name   string
	action authz.Action
	from   []models.TicketStatus
	to     models.TicketStatus
}

var (
	approveTicket = transition{"approve", authz.ActionApproveTicket,
		[]models.TicketStatus{models.TicketPending}, models.TicketApproved}
	acknowledgeTicket = transition{"acknowledge", authz.ActionAcknowledgeTicket,
		[]models.TicketStatus{models.TicketApproved}, models.TicketAcknowledged}
	submitInvoice = transition{"submit invoice for", authz.ActionSubmitInvoice,
		[]models.TicketStatus{models.TicketAcknowledged, models.TicketInvoiceRejected}, models.TicketInvoiceSubmitted}
	requestRepair = transition{"request repair for", authz.ActionRequestRepair,
		[]models.TicketStatus{models.TicketAcknowledged}, models.TicketRepairRequested}
	acceptInvoice = transition{"accept invoice for", authz.ActionDecideInvoice,
		[]models.TicketStatus{models.TicketInvoiceSubmitted}, models.TicketInvoiceAccepted}
	rejectInvoice = transition{"reject invoice for", authz.ActionDecideInvoice,
		[]models.TicketStatus{models.TicketInvoiceSubmitted}, models.TicketInvoiceRejected}
	completeTicket = transition{"complete", authz.ActionCompleteTicket,
		[]models.TicketStatus{models.TicketInvoiceAccepted}, models.TicketCompleted}
)

// apply runs tr against the ticket with ticketID. prepare, when set, runs after
// every precondition has passed and before the ticket write; it may write child
// records and fill ticket fields. The ticket write is conditioned on the status
// and version read here.
func (e *Engine) apply(ctx context.Context, actor authz.Actor, ticketID string, tr transition,
	prepare func(t *models.Ticket, now time.Time) error) (*models.Ticket, error) {
	if err := authz.Authorize(actor, tr.action); err != nil {
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
	if err := authz.AuthorizeTicket(actor, tr.action, ticket); err != nil {
		return nil, err
	}
	if !slices.Contains(tr.from, ticket.Status) {
		return nil, apperr.InvalidTransition("cannot %s ticket in status %s", tr.name, ticket.Status)
	}

	cond := db.TicketCondition{Status: ticket.Status, Version: ticket.Version}
	next := *ticket
	now := e.now()
	if prepare != nil {
		if err := prepare(&next, now); err != nil {
			return nil, err
		}
	}
	next.Status = tr.to
	next.StatusUpdated = &now
	next.Version = cond.Version + 1
	next.UpdatedAt = now

	if err := e.store.Tickets.ReplaceTicket(ctx, next, cond); err != nil {
		switch {
		case errors.Is(err, db.ErrStale):
			return nil, apperr.InvalidTransition("ticket %s changed while trying to %s it", id.Hex(), tr.name)
		case errors.Is(err, db.ErrNotFound):
			return nil, apperr.NotFound("ticket")
		default:
			return nil, apperr.Unexpected("update ticket", err)
		}
	}
	return &next, nil
}

// ApproveTicket moves a pending ticket to approved.
func (e *Engine) ApproveTicket(ctx context.Context, actor authz.Actor, ticketID string) (*models.Ticket, error) {
	return e.apply(ctx, actor, ticketID, approveTicket, func(t *models.Ticket, now time.Time) error {
		t.ApprovedBy = ptr(actor.ID)
		setOnce(&t.ApprovedAt, now)
		return nil
	})
}

// AcknowledgeTicket lets the assigned vendor accept an approved ticket.
func (e *Engine) AcknowledgeTicket(ctx context.Context, actor authz.Actor, ticketID string) (*models.Ticket, error) {
	return e.apply(ctx, actor, ticketID, acknowledgeTicket, func(t *models.Ticket, now time.Time) error {
		t.AcknowledgedBy = ptr(actor.ID)
		setOnce(&t.AcknowledgedAt, now)
		return nil
	})
}

// CompleteTicket closes a ticket whose invoice was accepted.
func (e *Engine) CompleteTicket(ctx context.Context, actor authz.Actor, ticketID string) (*models.Ticket, error) {
	return e.apply(ctx, actor, ticketID, completeTicket, func(t *models.Ticket, now time.Time) error {
		setOnce(&t.CompletedAt, now)
		return nil
	})
}

// CreateTicket raises a pending ticket on a bus. The vendor comes from the bus.
func (e *Engine) CreateTicket(ctx context.Context, actor authz.Actor, req models.CreateTicketRequest) (*models.Ticket, error) {
	if err := authz.Authorize(actor, authz.ActionCreateTicket); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	busID, err := parseID("busId", req.BusID)
	if err != nil {
		return nil, err
	}
	bus, err := e.loadBus(ctx, busID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	ticket := models.Ticket{
		ID:             primitive.NewObjectID(),
		BusID:          bus.ID,
		VendorID:       bus.VendorID,
		CreatedBy:      actor.ID,
		ServiceType:    req.ServiceType,
		RepairCategory: req.RepairCategory,
		Description:    req.Description,
		Status:         models.TicketPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.store.Tickets.InsertTicket(ctx, ticket); err != nil {
		return nil, apperr.Unexpected("insert ticket", err)
	}
	return &ticket, nil
}

func (e *Engine) loadTicket(ctx context.Context, id primitive.ObjectID) (*models.Ticket, error) {
	t, err := e.store.Tickets.FindTicketByID(ctx, id)
	if err != nil {
		return nil, lookupError("ticket", err)
	}
	return t, nil
}

func (e *Engine) loadBus(ctx context.Context, id primitive.ObjectID) (*models.Bus, error) {
	b, err := e.store.Buses.FindBusByID(ctx, id)
	if err != nil {
		return nil, lookupError("bus", err)
	}
	return b, nil
}

func (e *Engine) loadUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := e.store.Users.FindUserByID(ctx, id)
	if err != nil {
		return nil, lookupError("user", err)
	}
	return u, nil
}

func lookupError(resource string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound(resource)
	}
	return apperr.Unexpected("find "+resource, err)
}

func parseID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(field, "is not a valid id")
	}
	return id, nil
}

// setOnce stamps *p with now unless it is already set.
func setOnce(p **time.Time, now time.Time) {
	if *p == nil {
		*p = &now
	}
}

func ptr[T any](v T) *T { return &v }
