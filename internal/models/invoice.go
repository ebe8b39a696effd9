package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvoiceStatus is the decision state of an invoice.
type InvoiceStatus string

const (
	InvoicePending  InvoiceStatus = "pending"
	InvoiceApproved InvoiceStatus = "approved"
	InvoiceRejected InvoiceStatus = "rejected"
)

// Invoice is a vendor's bill for a ticket. It is decided exactly once.
type Invoice struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TicketID    primitive.ObjectID  `bson:"ticketId" json:"ticketId"`
	VendorID    primitive.ObjectID  `bson:"vendorId" json:"vendorId"`
	Amount      float64             `bson:"amount" json:"amount"`
	Description string              `bson:"description" json:"description"`
	Status      InvoiceStatus       `bson:"status" json:"status"`
	SubmittedAt time.Time           `bson:"submittedAt" json:"submittedAt"`
	ApprovedBy  *primitive.ObjectID `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	RejectedBy  *primitive.ObjectID `bson:"rejectedBy,omitempty" json:"rejectedBy,omitempty"`
	RejectedAt  *time.Time          `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// SubmitInvoiceRequest is the payload for submitting an invoice on a ticket.
type SubmitInvoiceRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}
