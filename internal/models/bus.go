package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Part is the service state of one maintenance part on a bus.
type Part struct {
	ServiceKm float64 `bson:"serviceKm" json:"serviceKm"` // threshold before service
	CurrentKm float64 `bson:"currentKm" json:"currentKm"` // odometer at part
}

// DueForService reports whether the part has reached its service threshold.
func (p Part) DueForService() bool {
	return p.ServiceKm > 0 && p.CurrentKm >= p.ServiceKm
}

// Bus represents a fleet bus. The vendor is assigned at creation and copied
// onto every ticket raised against the bus.
type Bus struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChassisNumber      string             `bson:"chassisNumber" json:"chassisNumber"`
	FleetNumber        string             `bson:"fleetNumber" json:"fleetNumber"`
	RegistrationNumber string             `bson:"registrationNumber" json:"registrationNumber"`
	Make               string             `bson:"make" json:"make"`
	Model              string             `bson:"model" json:"model"`
	Year               int                `bson:"year" json:"year"`
	Engine             Part               `bson:"engine" json:"engine"`
	AC                 Part               `bson:"ac" json:"ac"`
	Tyre               Part               `bson:"tyre" json:"tyre"`
	Transmission       Part               `bson:"transmission" json:"transmission"`
	BrakePad           Part               `bson:"brakePad" json:"brakePad"`
	VendorID           primitive.ObjectID `bson:"vendor" json:"vendor"`
	CreatedBy          primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NamedPart pairs a part with its field name.
type NamedPart struct {
	Name string
	Part Part
}

// Parts returns the five maintenance parts in a fixed order.
func (b *Bus) Parts() []NamedPart {
	return []NamedPart{
		{"engine", b.Engine},
		{"ac", b.AC},
		{"tyre", b.Tyre},
		{"transmission", b.Transmission},
		{"brakePad", b.BrakePad},
	}
}

// CreateBusRequest is the payload for registering a bus.
type CreateBusRequest struct {
	ChassisNumber      string `json:"chassisNumber"`
	FleetNumber        string `json:"fleetNumber"`
	RegistrationNumber string `json:"registrationNumber"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	Engine             Part   `json:"engine"`
	AC                 Part   `json:"ac"`
	Tyre               Part   `json:"tyre"`
	Transmission       Part   `json:"transmission"`
	BrakePad           Part   `json:"brakePad"`
	VendorID           string `json:"vendorId"`
}
