package workflow

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/bus-maintenance/internal/apperr"
	"github.com/ukydev/bus-maintenance/internal/authz"
	"github.com/ukydev/bus-maintenance/internal/models"
)

// loggingService logs every command that passes through the wrapped Service.
type loggingService struct {
	next   Service
	logger log.FieldLogger
}

// NewLoggingService wraps next so each command emits one log entry.
func NewLoggingService(next Service, logger log.FieldLogger) Service {
	return &loggingService{next: next, logger: logger}
}

func (s *loggingService) log(command string, actor authz.Actor, target string, start time.Time, err error) {
	entry := s.logger.WithFields(log.Fields{
		"command":    command,
		"actor_id":   actor.ID.Hex(),
		"actor_role": actor.Role,
		"duration":   time.Since(start).String(),
	})
	if target != "" {
		entry = entry.WithField("target_id", target)
	}
	if err == nil {
		entry.Info("command completed")
		return
	}
	kind := apperr.KindOf(err)
	entry = entry.WithField("error_code", kind)
	switch kind {
	case apperr.KindUnexpected:
		entry.WithError(err).Error("command failed")
	case apperr.KindForbidden, apperr.KindInvalidTransition:
		entry.WithField("reason", err.Error()).Warn("command rejected")
	default:
		entry.WithField("reason", err.Error()).Info("command rejected")
	}
}

func (s *loggingService) CreateBus(ctx context.Context, actor authz.Actor, req models.CreateBusRequest) (bus *models.Bus, err error) {
	defer func(start time.Time) { s.log("createBus", actor, req.FleetNumber, start, err) }(time.Now())
	return s.next.CreateBus(ctx, actor, req)
}

func (s *loggingService) GetBus(ctx context.Context, actor authz.Actor, busID string) (bus *models.Bus, err error) {
	defer func(start time.Time) { s.log("getBus", actor, busID, start, err) }(time.Now())
	return s.next.GetBus(ctx, actor, busID)
}

func (s *loggingService) ListBuses(ctx context.Context, actor authz.Actor) (buses []models.Bus, err error) {
	defer func(start time.Time) { s.log("listBuses", actor, "", start, err) }(time.Now())
	return s.next.ListBuses(ctx, actor)
}

func (s *loggingService) CreateTicket(ctx context.Context, actor authz.Actor, req models.CreateTicketRequest) (ticket *models.Ticket, err error) {
	defer func(start time.Time) { s.log("createTicket", actor, req.BusID, start, err) }(time.Now())
	return s.next.CreateTicket(ctx, actor, req)
}

func (s *loggingService) GetTicket(ctx context.Context, actor authz.Actor, ticketID string) (ticket *models.Ticket, err error) {
	defer func(start time.Time) { s.log("getTicket", actor, ticketID, start, err) }(time.Now())
	return s.next.GetTicket(ctx, actor, ticketID)
}

func (s *loggingService) ListTickets(ctx context.Context, actor authz.Actor, q TicketQuery) (tickets []models.Ticket, err error) {
	defer func(start time.Time) { s.log("listTickets", actor, "", start, err) }(time.Now())
	return s.next.ListTickets(ctx, actor, q)
}

func (s *loggingService) ApproveTicket(ctx context.Context, actor authz.Actor, ticketID string) (ticket *models.Ticket, err error) {
	defer func(start time.Time) { s.log("approveTicket", actor, ticketID, start, err) }(time.Now())
	return s.next.ApproveTicket(ctx, actor, ticketID)
}

func (s *loggingService) AcknowledgeTicket(ctx context.Context, actor authz.Actor, ticketID string) (ticket *models.Ticket, err error) {
	defer func(start time.Time) { s.log("acknowledgeTicket", actor, ticketID, start, err) }(time.Now())
	return s.next.AcknowledgeTicket(ctx, actor, ticketID)
}

func (s *loggingService) CompleteTicket(ctx context.Context, actor authz.Actor, ticketID string) (ticket *models.Ticket, err error) {
	defer func(start time.Time) { s.log("completeTicket", actor, ticketID, start, err) }(time.Now())
	return s.next.CompleteTicket(ctx, actor, ticketID)
}

func (s *loggingService) SubmitInvoice(ctx context.Context, actor authz.Actor, ticketID string, req models.SubmitInvoiceRequest) (res *TicketInvoice, err error) {
	defer func(start time.Time) { s.log("submitInvoice", actor, ticketID, start, err) }(time.Now())
	return s.next.SubmitInvoice(ctx, actor, ticketID, req)
}

func (s *loggingService) AcceptInvoice(ctx context.Context, actor authz.Actor, invoiceID string) (res *TicketInvoice, err error) {
	defer func(start time.Time) { s.log("acceptInvoice", actor, invoiceID, start, err) }(time.Now())
	return s.next.AcceptInvoice(ctx, actor, invoiceID)
}

func (s *loggingService) RejectInvoice(ctx context.Context, actor authz.Actor, invoiceID string) (res *TicketInvoice, err error) {
	defer func(start time.Time) { s.log("rejectInvoice", actor, invoiceID, start, err) }(time.Now())
	return s.next.RejectInvoice(ctx, actor, invoiceID)
}

func (s *loggingService) AcceptTicketInvoice(ctx context.Context, actor authz.Actor, ticketID string) (res *TicketInvoice, err error) {
	defer func(start time.Time) { s.log("acceptTicketInvoice", actor, ticketID, start, err) }(time.Now())
	return s.next.AcceptTicketInvoice(ctx, actor, ticketID)
}

func (s *loggingService) RejectTicketInvoice(ctx context.Context, actor authz.Actor, ticketID string) (res *TicketInvoice, err error) {
	defer func(start time.Time) { s.log("rejectTicketInvoice", actor, ticketID, start, err) }(time.Now())
	return s.next.RejectTicketInvoice(ctx, actor, ticketID)
}

func (s *loggingService) RequestRepair(ctx context.Context, actor authz.Actor, ticketID string, in models.RepairRequestInput) (res *TicketRepair, err error) {
	defer func(start time.Time) { s.log("requestRepair", actor, ticketID, start, err) }(time.Now())
	return s.next.RequestRepair(ctx, actor, ticketID, in)
}

func (s *loggingService) SubmitRepairRequest(ctx context.Context, actor authz.Actor, in models.RepairRequestInput) (res *TicketRepair, err error) {
	target := in.TicketID
	if target == "" {
		target = in.BusID
	}
	defer func(start time.Time) { s.log("submitRepairRequest", actor, target, start, err) }(time.Now())
	return s.next.SubmitRepairRequest(ctx, actor, in)
}

func (s *loggingService) ResolveRepairRequest(ctx context.Context, actor authz.Actor, requestID string, in models.ResolveRepairRequestInput) (req *models.RepairRequest, err error) {
	defer func(start time.Time) { s.log("resolveRepairRequest", actor, requestID, start, err) }(time.Now())
	return s.next.ResolveRepairRequest(ctx, actor, requestID, in)
}

func (s *loggingService) ListPendingRepairRequests(ctx context.Context, actor authz.Actor) (reqs []models.RepairRequest, err error) {
	defer func(start time.Time) { s.log("listPendingRepairRequests", actor, "", start, err) }(time.Now())
	return s.next.ListPendingRepairRequests(ctx, actor)
}

func (s *loggingService) GetDashboard(ctx context.Context, actor authz.Actor) (d *Dashboard, err error) {
	defer func(start time.Time) { s.log("getDashboard", actor, "", start, err) }(time.Now())
	return s.next.GetDashboard(ctx, actor)
}
