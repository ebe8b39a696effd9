package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RepairRequestStatus is the resolution state of a repair request.
type RepairRequestStatus string

const (
	RepairRequestPending  RepairRequestStatus = "pending"
	RepairRequestResolved RepairRequestStatus = "resolved"
	RepairRequestRejected RepairRequestStatus = "rejected"
)

// RepairRequest is a vendor-reported issue on a bus. TicketID is set when the
// request was escalated from a ticket.
type RepairRequest struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BusID          primitive.ObjectID  `bson:"busId" json:"busId"`
	VendorID       primitive.ObjectID  `bson:"vendorId" json:"vendorId"`
	TicketID       *primitive.ObjectID `bson:"ticketId,omitempty" json:"ticketId,omitempty"`
	Description    string              `bson:"description" json:"description"`
	RepairCategory RepairCategory      `bson:"repairCategory" json:"repairCategory"`
	Status         RepairRequestStatus `bson:"status" json:"status"`
	ResolvedBy     *primitive.ObjectID `bson:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	ResolvedAt     *time.Time          `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	RejectedAt     *time.Time          `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// RepairRequestInput is the payload for submitting a repair request. Exactly
// one of TicketID or BusID selects the creation path.
type RepairRequestInput struct {
	TicketID       string         `json:"ticketId,omitempty"`
	BusID          string         `json:"busId,omitempty"`
	Description    string         `json:"description"`
	RepairCategory RepairCategory `json:"repairCategory"`
}

// ResolveRepairRequestInput is the payload for resolving a repair request.
type ResolveRepairRequestInput struct {
	Status RepairRequestStatus `json:"status"`
}
