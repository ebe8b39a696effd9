package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/bus-maintenance/internal/apperr"
	"github.com/ukydev/bus-maintenance/internal/authz"
	"github.com/ukydev/bus-maintenance/internal/db"
	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	engine     *Engine
	store      *db.Store
	creator    authz.Actor
	supervisor authz.Actor
	vendor     authz.Actor
	otherVend  authz.Actor
	purchaser  authz.Actor
	bus        *models.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := db.NewMemoryStore()
	var mu sync.Mutex
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(store, WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}))

	f := &fixture{engine: engine, store: store}
	for _, u := range []struct {
		actor *authz.Actor
		role  models.Role
		email string
	}{
		{&f.creator, models.RoleServiceCreator, "creator@example.com"},
		{&f.supervisor, models.RoleSupervisor, "supervisor@example.com"},
		{&f.vendor, models.RoleVendor, "vendor@example.com"},
		{&f.otherVend, models.RoleVendor, "vendor2@example.com"},
		{&f.purchaser, models.RolePurchaseManager, "pm@example.com"},
	} {
		user := models.User{ID: primitive.NewObjectID(), Name: u.email, Email: u.email, Role: u.role}
		require.NoError(t, store.Users.InsertUser(ctx, user))
		*u.actor = authz.Actor{ID: user.ID, Role: u.role}
	}

	bus, err := engine.CreateBus(ctx, f.supervisor, models.CreateBusRequest{
		ChassisNumber:      "CH-100",
		FleetNumber:        "F-100",
		RegistrationNumber: "KA-01-100",
		Make:               "Volvo",
		Model:              "9400",
		Year:               2021,
		Engine:             models.Part{ServiceKm: 15000, CurrentKm: 400},
		VendorID:           f.vendor.ID.Hex(),
	})
	require.NoError(t, err)
	f.bus = bus
	return f
}

func (f *fixture) newTicket(t *testing.T) *models.Ticket {
	t.Helper()
	ticket, err := f.engine.CreateTicket(context.Background(), f.creator, models.CreateTicketRequest{
		BusID:       f.bus.ID.Hex(),
		ServiceType: models.ServiceMinor,
	})
	require.NoError(t, err)
	return ticket
}

// acknowledged returns a ticket already approved and acknowledged.
func (f *fixture) acknowledged(t *testing.T) *models.Ticket {
	t.Helper()
	ctx := context.Background()
	ticket := f.newTicket(t)
	_, err := f.engine.ApproveTicket(ctx, f.supervisor, ticket.ID.Hex())
	require.NoError(t, err)
	ticket, err = f.engine.AcknowledgeTicket(ctx, f.vendor, ticket.ID.Hex())
	require.NoError(t, err)
	return ticket
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket := f.newTicket(t)
	assert.Equal(t, models.TicketPending, ticket.Status)
	assert.Equal(t, f.vendor.ID, ticket.VendorID)
	id := ticket.ID.Hex()

	_, err := f.engine.CompleteTicket(ctx, f.vendor, id)
	assertKind(t, err, apperr.KindInvalidTransition)
	_, err = f.engine.AcknowledgeTicket(ctx, f.vendor, id)
	assertKind(t, err, apperr.KindInvalidTransition)

	ticket, err = f.engine.ApproveTicket(ctx, f.supervisor, id)
	require.NoError(t, err)
	assert.Equal(t, models.TicketApproved, ticket.Status)
	assert.Equal(t, f.supervisor.ID, *ticket.ApprovedBy)
	assert.NotNil(t, ticket.ApprovedAt)

	_, err = f.engine.ApproveTicket(ctx, f.supervisor, id)
	assertKind(t, err, apperr.KindInvalidTransition)
	_, err = f.engine.SubmitInvoice(ctx, f.vendor, id, models.SubmitInvoiceRequest{Amount: 500, Description: "service"})
	assertKind(t, err, apperr.KindInvalidTransition)

	ticket, err = f.engine.AcknowledgeTicket(ctx, f.vendor, id)
	require.NoError(t, err)
	assert.Equal(t, models.TicketAcknowledged, ticket.Status)
	assert.Equal(t, f.vendor.ID, *ticket.AcknowledgedBy)

	res, err := f.engine.SubmitInvoice(ctx, f.vendor, id, models.SubmitInvoiceRequest{Amount: 500, Description: "oil and filters"})
	require.NoError(t, err)
	assert.Equal(t, models.TicketInvoiceSubmitted, res.Ticket.Status)
	assert.Equal(t, models.InvoicePending, res.Invoice.Status)
	assert.Equal(t, res.Invoice.ID, *res.Ticket.InvoiceID)
	assert.Equal(t, 500.0, res.Invoice.Amount)

	_, err = f.engine.CompleteTicket(ctx, f.vendor, id)
	assertKind(t, err, apperr.KindInvalidTransition)

	res, err = f.engine.AcceptInvoice(ctx, f.supervisor, res.Invoice.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.TicketInvoiceAccepted, res.Ticket.Status)
	assert.Equal(t, models.InvoiceApproved, res.Invoice.Status)
	assert.Equal(t, f.supervisor.ID, *res.Invoice.ApprovedBy)
	assert.Equal(t, f.supervisor.ID, *res.Ticket.InvoiceApprovedBy)

	ticket, err = f.engine.CompleteTicket(ctx, f.vendor, id)
	require.NoError(t, err)
	assert.Equal(t, models.TicketCompleted, ticket.Status)
	assert.NotNil(t, ticket.CompletedAt)

	for _, attempt := range []func() error{
		func() error { _, err := f.engine.ApproveTicket(ctx, f.supervisor, id); return err },
		func() error { _, err := f.engine.CompleteTicket(ctx, f.vendor, id); return err },
		func() error { _, err := f.engine.RejectTicketInvoice(ctx, f.supervisor, id); return err },
	} {
		assertKind(t, attempt(), apperr.KindInvalidTransition)
	}

	stored, err := f.store.Tickets.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketCompleted, stored.Status)
	assert.Equal(t, int64(5), stored.Version)
}

func TestRejectedInvoiceCanBeResubmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.acknowledged(t)
	id := ticket.ID.Hex()

	first, err := f.engine.SubmitInvoice(ctx, f.vendor, id, models.SubmitInvoiceRequest{Amount: 900, Description: "first"})
	require.NoError(t, err)
	submittedAt := *first.Ticket.InvoiceSubmittedAt

	rejected, err := f.engine.RejectTicketInvoice(ctx, f.supervisor, id)
	require.NoError(t, err)
	assert.Equal(t, models.TicketInvoiceRejected, rejected.Ticket.Status)
	assert.Equal(t, models.InvoiceRejected, rejected.Invoice.Status)
	assert.Equal(t, f.supervisor.ID, *rejected.Invoice.RejectedBy)

	second, err := f.engine.SubmitInvoice(ctx, f.vendor, id, models.SubmitInvoiceRequest{Amount: 700, Description: "second"})
	require.NoError(t, err)
	assert.Equal(t, models.TicketInvoiceSubmitted, second.Ticket.Status)
	assert.NotEqual(t, first.Invoice.ID, second.Invoice.ID)
	assert.Equal(t, second.Invoice.ID, *second.Ticket.InvoiceID)
	assert.Equal(t, submittedAt, *second.Ticket.InvoiceSubmittedAt, "first-entry timestamp is kept")
	assert.NotNil(t, second.Ticket.InvoiceRejectedAt)

	// The old invoice stays decided and cannot be reopened.
	_, err = f.engine.AcceptInvoice(ctx, f.supervisor, first.Invoice.ID.Hex())
	assertKind(t, err, apperr.KindInvalidTransition)

	accepted, err := f.engine.AcceptInvoice(ctx, f.supervisor, second.Invoice.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.TicketInvoiceAccepted, accepted.Ticket.Status)
}

func TestInvoiceDecidedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.acknowledged(t)

	res, err := f.engine.SubmitInvoice(ctx, f.vendor, ticket.ID.Hex(), models.SubmitInvoiceRequest{Amount: 10, Description: "x"})
	require.NoError(t, err)
	invoiceID := res.Invoice.ID.Hex()

	_, err = f.engine.AcceptInvoice(ctx, f.supervisor, invoiceID)
	require.NoError(t, err)

	_, err = f.engine.RejectInvoice(ctx, f.supervisor, invoiceID)
	assertKind(t, err, apperr.KindInvalidTransition)
	_, err = f.engine.AcceptInvoice(ctx, f.supervisor, invoiceID)
	assertKind(t, err, apperr.KindInvalidTransition)

	stored, err := f.store.Invoices.FindInvoiceByID(ctx, res.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceApproved, stored.Status)
	assert.Nil(t, stored.RejectedAt)
}

func TestOwnershipAndRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.newTicket(t)
	id := ticket.ID.Hex()

	_, err := f.engine.ApproveTicket(ctx, f.creator, id)
	assertKind(t, err, apperr.KindForbidden)
	_, err = f.engine.ApproveTicket(ctx, f.vendor, id)
	assertKind(t, err, apperr.KindForbidden)

	_, err = f.engine.ApproveTicket(ctx, f.supervisor, id)
	require.NoError(t, err)

	_, err = f.engine.AcknowledgeTicket(ctx, f.otherVend, id)
	assertKind(t, err, apperr.KindForbidden)
	_, err = f.engine.AcknowledgeTicket(ctx, f.supervisor, id)
	assertKind(t, err, apperr.KindForbidden)

	stored, err := f.store.Tickets.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketApproved, stored.Status)
	assert.Nil(t, stored.AcknowledgedBy)

	_, err = f.engine.CreateTicket(ctx, f.vendor, models.CreateTicketRequest{BusID: f.bus.ID.Hex(), ServiceType: models.ServiceMinor})
	assertKind(t, err, apperr.KindForbidden)
	_, err = f.engine.CreateTicket(ctx, f.purchaser, models.CreateTicketRequest{BusID: f.bus.ID.Hex(), ServiceType: models.ServiceMinor})
	assertKind(t, err, apperr.KindForbidden)
}

func TestConcurrentApproveSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.newTicket(t)

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.ApproveTicket(ctx, f.supervisor, ticket.ID.Hex())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	}
	assert.Equal(t, 1, succeeded)

	stored, err := f.store.Tickets.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestConcurrentInvoiceDecisionSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.acknowledged(t)
	res, err := f.engine.SubmitInvoice(ctx, f.vendor, ticket.ID.Hex(), models.SubmitInvoiceRequest{Amount: 1, Description: "x"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var accErr, rejErr error
	wg.Add(2)
	go func() { defer wg.Done(); _, accErr = f.engine.AcceptInvoice(ctx, f.supervisor, res.Invoice.ID.Hex()) }()
	go func() { defer wg.Done(); _, rejErr = f.engine.RejectInvoice(ctx, f.supervisor, res.Invoice.ID.Hex()) }()
	wg.Wait()

	assert.True(t, (accErr == nil) != (rejErr == nil), "exactly one decision wins: accept=%v reject=%v", accErr, rejErr)

	stored, err := f.store.Tickets.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	inv, err := f.store.Invoices.FindInvoiceByID(ctx, res.Invoice.ID)
	require.NoError(t, err)
	if accErr == nil {
		assert.Equal(t, models.TicketInvoiceAccepted, stored.Status)
		assert.Equal(t, models.InvoiceApproved, inv.Status)
	} else {
		assert.Equal(t, models.TicketInvoiceRejected, stored.Status)
		assert.Equal(t, models.InvoiceRejected, inv.Status)
	}
}

func TestCreateTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	repair, err := f.engine.CreateTicket(ctx, f.supervisor, models.CreateTicketRequest{
		BusID:          f.bus.ID.Hex(),
		ServiceType:    models.ServiceRepair,
		RepairCategory: models.RepairEngine,
		Description:    "  knocking at idle ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RepairEngine, repair.RepairCategory)
	assert.Equal(t, "knocking at idle", repair.Description)
	assert.Equal(t, f.bus.VendorID, repair.VendorID)
	assert.Equal(t, f.supervisor.ID, repair.CreatedBy)

	_, err = f.engine.CreateTicket(ctx, f.creator, models.CreateTicketRequest{BusID: f.bus.ID.Hex(), ServiceType: models.ServiceRepair})
	assertKind(t, err, apperr.KindValidation)

	_, err = f.engine.CreateTicket(ctx, f.creator, models.CreateTicketRequest{
		BusID: f.bus.ID.Hex(), ServiceType: models.ServiceMajor, RepairCategory: models.RepairBody,
	})
	assertKind(t, err, apperr.KindValidation)

	_, err = f.engine.CreateTicket(ctx, f.creator, models.CreateTicketRequest{BusID: primitive.NewObjectID().Hex(), ServiceType: models.ServiceMinor})
	assertKind(t, err, apperr.KindNotFound)

	_, err = f.engine.CreateTicket(ctx, f.creator, models.CreateTicketRequest{BusID: "not-an-id", ServiceType: models.ServiceMinor})
	assertKind(t, err, apperr.KindValidation)
}

func TestMissingTicket(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.ApproveTicket(context.Background(), f.supervisor, primitive.NewObjectID().Hex())
	assertKind(t, err, apperr.KindNotFound)
	_, err = f.engine.AcceptInvoice(context.Background(), f.supervisor, primitive.NewObjectID().Hex())
	assertKind(t, err, apperr.KindNotFound)
}

func TestSubmitInvoiceValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.acknowledged(t)

	_, err := f.engine.SubmitInvoice(ctx, f.vendor, ticket.ID.Hex(), models.SubmitInvoiceRequest{Amount: -5, Description: "x"})
	assertKind(t, err, apperr.KindValidation)
	_, err = f.engine.SubmitInvoice(ctx, f.otherVend, ticket.ID.Hex(), models.SubmitInvoiceRequest{Amount: 5, Description: "x"})
	assertKind(t, err, apperr.KindForbidden)

	stored, err := f.store.Tickets.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketAcknowledged, stored.Status)
	assert.Nil(t, stored.InvoiceID)
}

func TestCreateBus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := models.CreateBusRequest{
		ChassisNumber:      "CH-100",
		FleetNumber:        "F-200",
		RegistrationNumber: "KA-01-200",
		Make:               "Tata",
		Model:              "Starbus",
		Year:               2019,
		VendorID:           f.vendor.ID.Hex(),
	}

	_, err := f.engine.CreateBus(ctx, f.creator, req)
	assertKind(t, err, apperr.KindConflict)

	req.ChassisNumber = "CH-200"
	req.VendorID = f.creator.ID.Hex()
	_, err = f.engine.CreateBus(ctx, f.creator, req)
	assertKind(t, err, apperr.KindValidation)

	req.VendorID = primitive.NewObjectID().Hex()
	_, err = f.engine.CreateBus(ctx, f.creator, req)
	assertKind(t, err, apperr.KindNotFound)

	req.VendorID = f.otherVend.ID.Hex()
	_, err = f.engine.CreateBus(ctx, f.vendor, req)
	assertKind(t, err, apperr.KindForbidden)

	bus, err := f.engine.CreateBus(ctx, f.creator, req)
	require.NoError(t, err)
	assert.Equal(t, f.otherVend.ID, bus.VendorID)

	buses, err := f.engine.ListBuses(ctx, f.purchaser)
	require.NoError(t, err)
	assert.Len(t, buses, 2)

	got, err := f.engine.GetBus(ctx, f.vendor, bus.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "F-200", got.FleetNumber)
}

// flakyTickets fails the next failures ticket writes, then delegates.
type flakyTickets struct {
	db.TicketCollection
	mu       sync.Mutex
	failures int
}

func (c *flakyTickets) ReplaceTicket(ctx context.Context, ticket models.Ticket, cond db.TicketCondition) error {
	c.mu.Lock()
	fail := c.failures > 0
	if fail {
		c.failures--
	}
	c.mu.Unlock()
	if fail {
		return errors.New("write timeout")
	}
	return c.TicketCollection.ReplaceTicket(ctx, ticket, cond)
}

func TestInvoiceDecisionResumesAfterTicketWriteFailure(t *testing.T) {
	t.Run("by invoice", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		ticket := f.acknowledged(t)
		res, err := f.engine.SubmitInvoice(ctx, f.vendor, ticket.ID.Hex(), models.SubmitInvoiceRequest{Amount: 250, Description: "brake pads"})
		require.NoError(t, err)
		invoiceID := res.Invoice.ID.Hex()

		f.store.Tickets = &flakyTickets{TicketCollection: f.store.Tickets, failures: 1}

		_, err = f.engine.AcceptInvoice(ctx, f.supervisor, invoiceID)
		assertKind(t, err, apperr.KindUnexpected)

		stored, err := f.store.Tickets.FindTicketByID(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TicketInvoiceSubmitted, stored.Status)
		inv, err := f.store.Invoices.FindInvoiceByID(ctx, res.Invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, models.InvoiceApproved, inv.Status)

		// The recorded decision cannot be reversed.
		_, err = f.engine.RejectInvoice(ctx, f.supervisor, invoiceID)
		assertKind(t, err, apperr.KindInvalidTransition)
		_, err = f.engine.RejectTicketInvoice(ctx, f.supervisor, ticket.ID.Hex())
		assertKind(t, err, apperr.KindInvalidTransition)

		accepted, err := f.engine.AcceptInvoice(ctx, f.supervisor, invoiceID)
		require.NoError(t, err)
		assert.Equal(t, models.TicketInvoiceAccepted, accepted.Ticket.Status)
		assert.Equal(t, models.InvoiceApproved, accepted.Invoice.Status)
		assert.Equal(t, f.supervisor.ID, *accepted.Ticket.InvoiceApprovedBy)
		assert.Equal(t, *inv.ApprovedAt, *accepted.Invoice.ApprovedAt, "invoice is not decided twice")

		completed, err := f.engine.CompleteTicket(ctx, f.vendor, ticket.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, models.TicketCompleted, completed.Status)
	})

	t.Run("by ticket", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		ticket := f.acknowledged(t)
		id := ticket.ID.Hex()
		_, err := f.engine.SubmitInvoice(ctx, f.vendor, id, models.SubmitInvoiceRequest{Amount: 250, Description: "brake pads"})
		require.NoError(t, err)

		f.store.Tickets = &flakyTickets{TicketCollection: f.store.Tickets, failures: 1}

		_, err = f.engine.RejectTicketInvoice(ctx, f.supervisor, id)
		assertKind(t, err, apperr.KindUnexpected)
		_, err = f.engine.AcceptTicketInvoice(ctx, f.supervisor, id)
		assertKind(t, err, apperr.KindInvalidTransition)

		rejected, err := f.engine.RejectTicketInvoice(ctx, f.supervisor, id)
		require.NoError(t, err)
		assert.Equal(t, models.TicketInvoiceRejected, rejected.Ticket.Status)
		assert.Equal(t, models.InvoiceRejected, rejected.Invoice.Status)

		again, err := f.engine.SubmitInvoice(ctx, f.vendor, id, models.SubmitInvoiceRequest{Amount: 200, Description: "brake pads, revised"})
		require.NoError(t, err)
		assert.Equal(t, models.TicketInvoiceSubmitted, again.Ticket.Status)
	})
}

func TestUpdatedAtFollowsWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.False(t, f.bus.UpdatedAt.IsZero())
	assert.Equal(t, f.bus.CreatedAt, f.bus.UpdatedAt)

	ticket := f.newTicket(t)
	assert.False(t, ticket.UpdatedAt.IsZero())
	assert.Equal(t, ticket.CreatedAt, ticket.UpdatedAt)

	approved, err := f.engine.ApproveTicket(ctx, f.supervisor, ticket.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, *approved.StatusUpdated, approved.UpdatedAt)
	assert.True(t, approved.UpdatedAt.After(ticket.UpdatedAt))

	stored, err := f.store.Tickets.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, approved.UpdatedAt, stored.UpdatedAt)

	_, err = f.engine.AcknowledgeTicket(ctx, f.vendor, ticket.ID.Hex())
	require.NoError(t, err)
	res, err := f.engine.SubmitInvoice(ctx, f.vendor, ticket.ID.Hex(), models.SubmitInvoiceRequest{Amount: 80, Description: "coolant"})
	require.NoError(t, err)
	assert.Equal(t, res.Invoice.SubmittedAt, res.Invoice.UpdatedAt)

	accepted, err := f.engine.AcceptInvoice(ctx, f.supervisor, res.Invoice.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, *accepted.Invoice.ApprovedAt, accepted.Invoice.UpdatedAt)
	inv, err := f.store.Invoices.FindInvoiceByID(ctx, res.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, *inv.ApprovedAt, inv.UpdatedAt)

	repair, err := f.engine.SubmitRepairRequest(ctx, f.vendor, models.RepairRequestInput{
		BusID: f.bus.ID.Hex(), Description: "mirror cracked", RepairCategory: models.RepairBody,
	})
	require.NoError(t, err)
	assert.Equal(t, repair.RepairRequest.CreatedAt, repair.RepairRequest.UpdatedAt)

	resolved, err := f.engine.ResolveRepairRequest(ctx, f.supervisor, repair.RepairRequest.ID.Hex(),
		models.ResolveRepairRequestInput{Status: models.RepairRequestResolved})
	require.NoError(t, err)
	assert.Equal(t, *resolved.ResolvedAt, resolved.UpdatedAt)
}

func TestVendorWorkRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.acknowledged(t)
	id := ticket.ID.Hex()

	_, err := f.engine.RequestRepair(ctx, f.otherVend, id, models.RepairRequestInput{
		Description: "steering play", RepairCategory: models.RepairEngine,
	})
	assertKind(t, err, apperr.KindForbidden)

	stored, err := f.store.Tickets.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketAcknowledged, stored.Status)
	assert.Equal(t, int64(2), stored.Version)
	assert.Nil(t, stored.RepairRequestID)
	pending, err := f.store.RepairRequests.FindRepairRequests(ctx, models.RepairRequestPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	res, err := f.engine.SubmitInvoice(ctx, f.vendor, id, models.SubmitInvoiceRequest{Amount: 40, Description: "wipers"})
	require.NoError(t, err)
	_, err = f.engine.AcceptInvoice(ctx, f.supervisor, res.Invoice.ID.Hex())
	require.NoError(t, err)

	_, err = f.engine.CompleteTicket(ctx, f.otherVend, id)
	assertKind(t, err, apperr.KindForbidden)

	stored, err = f.store.Tickets.FindTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketInvoiceAccepted, stored.Status)
	assert.Equal(t, int64(4), stored.Version)
	assert.Nil(t, stored.CompletedAt)
}
