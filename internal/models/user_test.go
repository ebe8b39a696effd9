package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"vendor role", RoleVendor, true},
		{"service creator role", RoleServiceCreator, true},
		{"supervisor role", RoleSupervisor, true},
		{"purchase manager role", RolePurchaseManager, true},
		{"invalid role", "admin", false},
		{"wrong case", "Supervisor", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Vendor@Example.COM "); got != "vendor@example.com" {
		t.Errorf("NormalizeEmail() = %q, want %q", got, "vendor@example.com")
	}
}

func TestEnumSpellings(t *testing.T) {
	// Stored values are a compatibility surface.
	tests := []struct {
		got  string
		want string
	}{
		{string(TicketInvoiceSubmitted), "invoiceSubmitted"},
		{string(TicketInvoiceRejected), "invoiceRejected"},
		{string(TicketInvoiceAccepted), "invoiceAccepted"},
		{string(TicketRepairRequested), "repairRequested"},
		{string(InvoicePending), "pending"},
		{string(RepairRequestResolved), "resolved"},
		{string(RepairAC), "AC REPAIR"},
		{string(RoleServiceCreator), "serviceCreator"},
		{string(RolePurchaseManager), "purchaseManager"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestIsValidServiceTypeAndCategory(t *testing.T) {
	for _, s := range []ServiceType{ServiceMinor, ServiceMajor, ServiceRepair, ServiceOther} {
		if !IsValidServiceType(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if IsValidServiceType("overhaul") {
		t.Error("expected overhaul to be invalid")
	}
	for _, c := range RepairCategories {
		if !IsValidRepairCategory(c) {
			t.Errorf("expected %s to be valid", c)
		}
	}
	if IsValidRepairCategory("electrical") {
		t.Error("repair categories are upper case")
	}
	if !IsValidTicketStatus(TicketCompleted) || IsValidTicketStatus("invoice-rejected") {
		t.Error("unexpected ticket status validity")
	}
}

func TestPartDueForService(t *testing.T) {
	if !(Part{ServiceKm: 10000, CurrentKm: 10000}).DueForService() {
		t.Error("part at threshold should be due")
	}
	if (Part{ServiceKm: 10000, CurrentKm: 9999}).DueForService() {
		t.Error("part below threshold should not be due")
	}
	if (Part{ServiceKm: 0, CurrentKm: 500}).DueForService() {
		t.Error("part without threshold should not be due")
	}
}
