package db

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemoryStore builds a Store held in process memory. It applies the same
// uniqueness and conditional-write rules as the Mongo store.
func NewMemoryStore() *Store {
	return &Store{
		Users:          &MemoryUserCollection{users: map[primitive.ObjectID]models.User{}},
		Buses:          &MemoryBusCollection{buses: map[primitive.ObjectID]models.Bus{}},
		Tickets:        &MemoryTicketCollection{tickets: map[primitive.ObjectID]models.Ticket{}},
		Invoices:       &MemoryInvoiceCollection{invoices: map[primitive.ObjectID]models.Invoice{}},
		RepairRequests: &MemoryRepairRequestCollection{reqs: map[primitive.ObjectID]models.RepairRequest{}},
	}
}

func stamp(id *primitive.ObjectID, created, updated *time.Time) {
	now := time.Now()
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = now
	}
}

// MemoryUserCollection implements UserCollection in memory.
type MemoryUserCollection struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func (c *MemoryUserCollection) InsertUser(_ context.Context, user models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	user.Email = models.NormalizeEmail(user.Email)
	for _, u := range c.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
		}
	}
	if _, ok := c.users[user.ID]; ok && !user.ID.IsZero() {
		return fmt.Errorf("%w: _id %s", ErrDuplicate, user.ID.Hex())
	}
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	c.users[user.ID] = user
	return nil
}

func (c *MemoryUserCollection) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (c *MemoryUserCollection) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	email = models.NormalizeEmail(email)
	for _, u := range c.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// MemoryBusCollection implements BusCollection in memory.
type MemoryBusCollection struct {
	mu    sync.RWMutex
	buses map[primitive.ObjectID]models.Bus
}

func (c *MemoryBusCollection) InsertBus(_ context.Context, bus models.Bus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.buses {
		switch {
		case b.ChassisNumber == bus.ChassisNumber:
			return fmt.Errorf("%w: chassisNumber %s", ErrDuplicate, bus.ChassisNumber)
		case b.FleetNumber == bus.FleetNumber:
			return fmt.Errorf("%w: fleetNumber %s", ErrDuplicate, bus.FleetNumber)
		case b.RegistrationNumber == bus.RegistrationNumber:
			return fmt.Errorf("%w: registrationNumber %s", ErrDuplicate, bus.RegistrationNumber)
		}
	}
	stamp(&bus.ID, &bus.CreatedAt, &bus.UpdatedAt)
	c.buses[bus.ID] = bus
	return nil
}

func (c *MemoryBusCollection) FindBusByID(_ context.Context, id primitive.ObjectID) (*models.Bus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.buses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (c *MemoryBusCollection) FindBuses(_ context.Context) ([]models.Bus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	buses := make([]models.Bus, 0, len(c.buses))
	for _, b := range c.buses {
		buses = append(buses, b)
	}
	sort.Slice(buses, func(i, j int) bool { return buses[i].FleetNumber < buses[j].FleetNumber })
	return buses, nil
}

// MemoryTicketCollection implements TicketCollection in memory.
type MemoryTicketCollection struct {
	mu      sync.RWMutex
	tickets map[primitive.ObjectID]models.Ticket
}

func (c *MemoryTicketCollection) InsertTicket(_ context.Context, ticket models.Ticket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tickets[ticket.ID]; ok && !ticket.ID.IsZero() {
		return fmt.Errorf("%w: _id %s", ErrDuplicate, ticket.ID.Hex())
	}
	stamp(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	c.tickets[ticket.ID] = ticket
	return nil
}

func (c *MemoryTicketCollection) FindTicketByID(_ context.Context, id primitive.ObjectID) (*models.Ticket, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (c *MemoryTicketCollection) FindTickets(_ context.Context, filter models.TicketFilter) ([]models.Ticket, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tickets := []models.Ticket{}
	for _, t := range c.tickets {
		if matchTicket(t, filter) {
			tickets = append(tickets, t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		if tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].ID.Hex() > tickets[j].ID.Hex()
		}
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
	return tickets, nil
}

func (c *MemoryTicketCollection) ReplaceTicket(_ context.Context, ticket models.Ticket, cond TicketCondition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored, ok := c.tickets[ticket.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != cond.Status || stored.Version != cond.Version {
		return ErrStale
	}
	ticket.CreatedAt = stored.CreatedAt
	if ticket.UpdatedAt.IsZero() {
		ticket.UpdatedAt = time.Now()
	}
	c.tickets[ticket.ID] = ticket
	return nil
}

func matchTicket(t models.Ticket, f models.TicketFilter) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
		return false
	}
	if f.BusID != nil && t.BusID != *f.BusID {
		return false
	}
	if f.VendorID != nil && t.VendorID != *f.VendorID {
		return false
	}
	if f.CreatedBy != nil && t.CreatedBy != *f.CreatedBy {
		return false
	}
	return true
}

// MemoryInvoiceCollection implements InvoiceCollection in memory.
type MemoryInvoiceCollection struct {
	mu       sync.RWMutex
	invoices map[primitive.ObjectID]models.Invoice
}

func (c *MemoryInvoiceCollection) InsertInvoice(_ context.Context, invoice models.Invoice) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.invoices[invoice.ID]; ok && !invoice.ID.IsZero() {
		return fmt.Errorf("%w: _id %s", ErrDuplicate, invoice.ID.Hex())
	}
	stamp(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
	c.invoices[invoice.ID] = invoice
	return nil
}

func (c *MemoryInvoiceCollection) FindInvoiceByID(_ context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inv, ok := c.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func (c *MemoryInvoiceCollection) FindInvoicesByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Invoice, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	invoices := []models.Invoice{}
	for _, id := range ids {
		if inv, ok := c.invoices[id]; ok {
			invoices = append(invoices, inv)
		}
	}
	return invoices, nil
}

func (c *MemoryInvoiceCollection) ReplaceInvoice(_ context.Context, invoice models.Invoice, from models.InvoiceStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored, ok := c.invoices[invoice.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != from {
		return ErrStale
	}
	invoice.CreatedAt = stored.CreatedAt
	if invoice.UpdatedAt.IsZero() {
		invoice.UpdatedAt = time.Now()
	}
	c.invoices[invoice.ID] = invoice
	return nil
}

// MemoryRepairRequestCollection implements RepairRequestCollection in memory.
type MemoryRepairRequestCollection struct {
	mu   sync.RWMutex
	reqs map[primitive.ObjectID]models.RepairRequest
}

func (c *MemoryRepairRequestCollection) InsertRepairRequest(_ context.Context, req models.RepairRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.reqs[req.ID]; ok && !req.ID.IsZero() {
		return fmt.Errorf("%w: _id %s", ErrDuplicate, req.ID.Hex())
	}
	stamp(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	c.reqs[req.ID] = req
	return nil
}

func (c *MemoryRepairRequestCollection) FindRepairRequestByID(_ context.Context, id primitive.ObjectID) (*models.RepairRequest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.reqs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (c *MemoryRepairRequestCollection) FindRepairRequests(_ context.Context, status models.RepairRequestStatus) ([]models.RepairRequest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reqs := []models.RepairRequest{}
	for _, r := range c.reqs {
		if status == "" || r.Status == status {
			reqs = append(reqs, r)
		}
	}
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].ID.Hex() < reqs[j].ID.Hex()
		}
		return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
	})
	return reqs, nil
}

func (c *MemoryRepairRequestCollection) ReplaceRepairRequest(_ context.Context, req models.RepairRequest, from models.RepairRequestStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored, ok := c.reqs[req.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != from {
		return ErrStale
	}
	req.CreatedAt = stored.CreatedAt
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = time.Now()
	}
	c.reqs[req.ID] = req
	return nil
}
