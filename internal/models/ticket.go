package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketStatus is the primary lifecycle state of a ticket.
type TicketStatus string

const (
	TicketPending          TicketStatus = "pending"
	TicketApproved         TicketStatus = "approved"
	TicketAcknowledged     TicketStatus = "acknowledged"
	TicketInvoiceSubmitted TicketStatus = "invoiceSubmitted"
	TicketRepairRequested  TicketStatus = "repairRequested"
	TicketInvoiceAccepted  TicketStatus = "invoiceAccepted"
	TicketInvoiceRejected  TicketStatus = "invoiceRejected"
	TicketCompleted        TicketStatus = "completed"
)

// TicketStatuses lists every ticket status in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketPending,
	TicketApproved,
	TicketAcknowledged,
	TicketInvoiceSubmitted,
	TicketRepairRequested,
	TicketInvoiceAccepted,
	TicketInvoiceRejected,
	TicketCompleted,
}

// IsValidTicketStatus checks if a status is one of TicketStatuses.
func IsValidTicketStatus(s TicketStatus) bool {
	for _, v := range TicketStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ServiceType is the kind of work a ticket asks for.
type ServiceType string

const (
	ServiceMinor  ServiceType = "minor"
	ServiceMajor  ServiceType = "major"
	ServiceRepair ServiceType = "repair"
	ServiceOther  ServiceType = "other"
)

// IsValidServiceType checks if a service type is valid
func IsValidServiceType(s ServiceType) bool {
	switch s {
	case ServiceMinor, ServiceMajor, ServiceRepair, ServiceOther:
		return true
	default:
		return false
	}
}

// RepairCategory classifies repair work.
type RepairCategory string

const (
	RepairElectrical         RepairCategory = "ELECTRICAL"
	RepairMechanical         RepairCategory = "MECHANICAL"
	RepairAC                 RepairCategory = "AC REPAIR"
	RepairEngine             RepairCategory = "ENGINE"
	RepairBody               RepairCategory = "BODY"
	RepairBatteryReplacement RepairCategory = "BATTERY REPLACEMENT"
	RepairTyreReplacement    RepairCategory = "TYRE REPLACEMENT"
)

// RepairCategories lists every valid repair category.
var RepairCategories = []RepairCategory{
	RepairElectrical,
	RepairMechanical,
	RepairAC,
	RepairEngine,
	RepairBody,
	RepairBatteryReplacement,
	RepairTyreReplacement,
}

// IsValidRepairCategory checks if a repair category is valid
func IsValidRepairCategory(c RepairCategory) bool {
	for _, v := range RepairCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Ticket tracks one maintenance job from request to completion.
//
// VendorID is copied from the bus at creation. RepairCategory is set iff
// ServiceType is repair. Each transition timestamp is set once, on first
// entry to its state. Version increments on every write and guards
// conditional updates.
type Ticket struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BusID              primitive.ObjectID  `bson:"busId" json:"busId"`
	VendorID           primitive.ObjectID  `bson:"vendorId" json:"vendorId"`
	CreatedBy          primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	ServiceType        ServiceType         `bson:"serviceType" json:"serviceType"`
	RepairCategory     RepairCategory      `bson:"repairCategory,omitempty" json:"repairCategory,omitempty"`
	Description        string              `bson:"description,omitempty" json:"description,omitempty"`
	Status             TicketStatus        `bson:"status" json:"status"`
	ApprovedBy         *primitive.ObjectID `bson:"initialApprovedBy,omitempty" json:"initialApprovedBy,omitempty"`
	AcknowledgedBy     *primitive.ObjectID `bson:"acknowledgedBy,omitempty" json:"acknowledgedBy,omitempty"`
	InvoiceApprovedBy  *primitive.ObjectID `bson:"invoiceApprovedBy,omitempty" json:"invoiceApprovedBy,omitempty"`
	InvoiceID          *primitive.ObjectID `bson:"invoice,omitempty" json:"invoice,omitempty"`
	RepairRequestID    *primitive.ObjectID `bson:"repairRequest,omitempty" json:"repairRequest,omitempty"`
	ApprovedAt         *time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	AcknowledgedAt     *time.Time          `bson:"acknowledgedAt,omitempty" json:"acknowledgedAt,omitempty"`
	InvoiceSubmittedAt *time.Time          `bson:"invoiceSubmittedAt,omitempty" json:"invoiceSubmittedAt,omitempty"`
	InvoiceAcceptedAt  *time.Time          `bson:"invoiceAcceptedAt,omitempty" json:"invoiceAcceptedAt,omitempty"`
	InvoiceRejectedAt  *time.Time          `bson:"invoiceRejectedAt,omitempty" json:"invoiceRejectedAt,omitempty"`
	RepairRequestedAt  *time.Time          `bson:"repairRequestedAt,omitempty" json:"repairRequestedAt,omitempty"`
	CompletedAt        *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	StatusUpdated      *time.Time          `bson:"statusUpdated,omitempty" json:"statusUpdated,omitempty"`
	Version            int64               `bson:"version" json:"version"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// CreateTicketRequest is the payload for raising a ticket. There is no vendor
// field: the vendor always comes from the bus.
type CreateTicketRequest struct {
	BusID          string         `json:"busId"`
	ServiceType    ServiceType    `json:"serviceType"`
	RepairCategory RepairCategory `json:"repairCategory,omitempty"`
	Description    string         `json:"description,omitempty"`
}

// TicketFilter narrows ticket listings. Zero fields match everything.
type TicketFilter struct {
	Statuses  []TicketStatus
	BusID     *primitive.ObjectID
	VendorID  *primitive.ObjectID
	CreatedBy *primitive.ObjectID
}
