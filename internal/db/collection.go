package db

import (
	"context"
	"errors"

	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document has the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert collides with a unique field.
	ErrDuplicate = errors.New("duplicate key")
	// ErrStale is returned when a conditional write finds the document
	// changed since it was read.
	ErrStale = errors.New("document changed since read")
)

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// BusCollection defines the interface for bus data operations.
type BusCollection interface {
	InsertBus(ctx context.Context, bus models.Bus) error
	FindBusByID(ctx context.Context, id primitive.ObjectID) (*models.Bus, error)
	FindBuses(ctx context.Context) ([]models.Bus, error)
}

// TicketCondition is the state a ticket must still be in for a conditional
// write to apply.
type TicketCondition struct {
	Status  models.TicketStatus
	Version int64
}

// TicketCollection defines the interface for ticket data operations.
// ReplaceTicket writes ticket only if the stored copy still matches cond and
// returns ErrStale otherwise.
type TicketCollection interface {
	InsertTicket(ctx context.Context, ticket models.Ticket) error
	FindTicketByID(ctx context.Context, id primitive.ObjectID) (*models.Ticket, error)
	FindTickets(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, error)
	ReplaceTicket(ctx context.Context, ticket models.Ticket, cond TicketCondition) error
}

// InvoiceCollection defines the interface for invoice data operations.
// ReplaceInvoice writes invoice only if the stored status is still from.
type InvoiceCollection interface {
	InsertInvoice(ctx context.Context, invoice models.Invoice) error
	FindInvoiceByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error)
	FindInvoicesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Invoice, error)
	ReplaceInvoice(ctx context.Context, invoice models.Invoice, from models.InvoiceStatus) error
}

// RepairRequestCollection defines the interface for repair request data
// operations. An empty status in FindRepairRequests matches every request.
type RepairRequestCollection interface {
	InsertRepairRequest(ctx context.Context, req models.RepairRequest) error
	FindRepairRequestByID(ctx context.Context, id primitive.ObjectID) (*models.RepairRequest, error)
	FindRepairRequests(ctx context.Context, status models.RepairRequestStatus) ([]models.RepairRequest, error)
	ReplaceRepairRequest(ctx context.Context, req models.RepairRequest, from models.RepairRequestStatus) error
}

// Store groups the collections the workflow engine works against.
type Store struct {
	Users          UserCollection
	Buses          BusCollection
	Tickets        TicketCollection
	Invoices       InvoiceCollection
	RepairRequests RepairRequestCollection
}
