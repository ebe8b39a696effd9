package models

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ukydev/bus-maintenance/internal/apperr"
)

// MaxDescriptionLength bounds free-text descriptions, in characters.
const MaxDescriptionLength = 500

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// MaxPasswordLength is the longest password bcrypt will hash, in bytes.
const MaxPasswordLength = 72

// CleanDescription trims s and checks it against MaxDescriptionLength. An
// empty result is an error only when required is set.
func CleanDescription(field, s string, required bool) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" && required {
		return "", apperr.Validation(field, "is required")
	}
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return "", apperr.Validation(field, "must be at most 500 characters")
	}
	return s, nil
}

// Validate checks the bus payload. The vendor reference is checked by the
// caller against the user store.
func (r *CreateBusRequest) Validate(now time.Time) error {
	r.ChassisNumber = strings.TrimSpace(r.ChassisNumber)
	r.FleetNumber = strings.TrimSpace(r.FleetNumber)
	r.RegistrationNumber = strings.TrimSpace(r.RegistrationNumber)
	r.Make = strings.TrimSpace(r.Make)
	r.Model = strings.TrimSpace(r.Model)

	required := []struct{ field, value string }{
		{"chassisNumber", r.ChassisNumber},
		{"fleetNumber", r.FleetNumber},
		{"registrationNumber", r.RegistrationNumber},
		{"make", r.Make},
		{"model", r.Model},
		{"vendorId", r.VendorID},
	}
	for _, f := range required {
		if f.value == "" {
			return apperr.Validation(f.field, "is required")
		}
	}
	if r.Year < 1900 || r.Year > now.Year()+1 {
		return apperr.Validation("year", "is out of range")
	}
	parts := map[string]Part{
		"engine":       r.Engine,
		"ac":           r.AC,
		"tyre":         r.Tyre,
		"transmission": r.Transmission,
		"brakePad":     r.BrakePad,
	}
	for name, p := range parts {
		if p.ServiceKm < 0 || p.CurrentKm < 0 || math.IsNaN(p.ServiceKm) || math.IsNaN(p.CurrentKm) {
			return apperr.Validation(name, "km values must be non-negative")
		}
	}
	return nil
}

// Validate checks the ticket payload: repairCategory is required for repair
// tickets and refused for every other service type.
func (r *CreateTicketRequest) Validate() error {
	if strings.TrimSpace(r.BusID) == "" {
		return apperr.Validation("busId", "is required")
	}
	if !IsValidServiceType(r.ServiceType) {
		return apperr.Validation("serviceType", "must be one of minor, major, repair, other")
	}
	if r.ServiceType == ServiceRepair {
		if r.RepairCategory == "" {
			return apperr.Validation("repairCategory", "is required for repair tickets")
		}
		if !IsValidRepairCategory(r.RepairCategory) {
			return apperr.Validation("repairCategory", "is not a known category")
		}
	} else if r.RepairCategory != "" {
		return apperr.Validation("repairCategory", "is only allowed for repair tickets")
	}
	desc, err := CleanDescription("description", r.Description, false)
	if err != nil {
		return err
	}
	r.Description = desc
	return nil
}

// Validate checks the invoice payload. Zero amounts are accepted.
func (r *SubmitInvoiceRequest) Validate() error {
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) || r.Amount < 0 {
		return apperr.Validation("amount", "must be a non-negative number")
	}
	desc, err := CleanDescription("description", r.Description, true)
	if err != nil {
		return err
	}
	r.Description = desc
	return nil
}

// Validate checks the repair request payload. Which of TicketID or BusID is
// set is checked by the caller.
func (r *RepairRequestInput) Validate() error {
	if !IsValidRepairCategory(r.RepairCategory) {
		return apperr.Validation("repairCategory", "is not a known category")
	}
	desc, err := CleanDescription("description", r.Description, true)
	if err != nil {
		return err
	}
	r.Description = desc
	return nil
}

// Validate checks the registration payload and normalizes the email.
func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	if r.Name == "" {
		return apperr.Validation("name", "is required")
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") || strings.ContainsAny(r.Email, " \t") {
		return apperr.Validation("email", "is not a valid address")
	}
	if len(r.Password) < MinPasswordLength {
		return apperr.Validation("password", "must be at least 6 characters")
	}
	if len(r.Password) > MaxPasswordLength {
		return apperr.Validation("password", "must be at most 72 bytes")
	}
	if !IsValidRole(r.Role) {
		return apperr.Validation("role", "must be one of vendor, serviceCreator, supervisor, purchaseManager")
	}
	return nil
}
