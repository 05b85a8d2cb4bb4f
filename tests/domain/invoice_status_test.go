package domain_test

import (
	"testing"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// InvoiceStatus Tests
// =============================================================================

func TestInvoiceStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.InvoiceStatus
		expected bool
	}{
		{"draft is valid", domain.InvoiceStatusDraft, true},
		{"unpaid is valid", domain.InvoiceStatusUnpaid, true},
		{"paid is valid", domain.InvoiceStatusPaid, true},
		{"overdue is valid", domain.InvoiceStatusOverdue, true},
		{"cancelled is valid", domain.InvoiceStatusCancelled, true},
		{"invalid status", domain.InvoiceStatus("INVALID"), false},
		{"empty status", domain.InvoiceStatus(""), false},
		{"lowercase is invalid", domain.InvoiceStatus("paid"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsValid())
		})
	}
}

func TestInvoiceStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     domain.InvoiceStatus
		to       domain.InvoiceStatus
		expected bool
	}{
		{"draft to unpaid", domain.InvoiceStatusDraft, domain.InvoiceStatusUnpaid, true},
		{"draft to cancelled", domain.InvoiceStatusDraft, domain.InvoiceStatusCancelled, true},
		{"unpaid to paid", domain.InvoiceStatusUnpaid, domain.InvoiceStatusPaid, true},
		{"unpaid to overdue", domain.InvoiceStatusUnpaid, domain.InvoiceStatusOverdue, true},
		{"unpaid to cancelled", domain.InvoiceStatusUnpaid, domain.InvoiceStatusCancelled, true},
		{"overdue to paid", domain.InvoiceStatusOverdue, domain.InvoiceStatusPaid, true},
		{"overdue back to unpaid", domain.InvoiceStatusOverdue, domain.InvoiceStatusUnpaid, true},
		{"cancelled back to draft", domain.InvoiceStatusCancelled, domain.InvoiceStatusDraft, true},
		{"paid to unpaid is rejected", domain.InvoiceStatusPaid, domain.InvoiceStatusUnpaid, false},
		{"paid to overdue is rejected", domain.InvoiceStatusPaid, domain.InvoiceStatusOverdue, false},
		{"paid to cancelled is rejected", domain.InvoiceStatusPaid, domain.InvoiceStatusCancelled, false},
		{"paid to paid is rejected", domain.InvoiceStatusPaid, domain.InvoiceStatusPaid, false},
		{"transition to invalid target is rejected", domain.InvoiceStatusDraft, domain.InvoiceStatus("BOGUS"), false},
		{"transition to empty target is rejected", domain.InvoiceStatusUnpaid, domain.InvoiceStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// =============================================================================
// DiagnosisStatus Tests
// =============================================================================

func TestDiagnosisStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.DiagnosisStatus
		expected bool
	}{
		{"designated is valid", domain.DiagnosisStatusDesignated, true},
		{"recruiting is valid", domain.DiagnosisStatusRecruiting, true},
		{"comparing is valid", domain.DiagnosisStatusComparing, true},
		{"decided is valid", domain.DiagnosisStatusDecided, true},
		{"cancelled is valid", domain.DiagnosisStatusCancelled, true},
		{"invalid status", domain.DiagnosisStatus("PENDING"), false},
		{"empty status", domain.DiagnosisStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsValid())
		})
	}
}

func TestDiagnosisStatus_IsClosed(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.DiagnosisStatus
		expected bool
	}{
		{"designated is open", domain.DiagnosisStatusDesignated, false},
		{"recruiting is open", domain.DiagnosisStatusRecruiting, false},
		{"comparing is open", domain.DiagnosisStatusComparing, false},
		{"decided IS closed", domain.DiagnosisStatusDecided, true},
		{"cancelled IS closed", domain.DiagnosisStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsClosed())
		})
	}
}

// =============================================================================
// OrderStatus Tests
// =============================================================================

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.OrderStatus
		expected bool
	}{
		{"ordered is valid", domain.OrderStatusOrdered, true},
		{"in_progress is valid", domain.OrderStatusInProgress, true},
		{"completed is valid", domain.OrderStatusCompleted, true},
		{"cancelled is valid", domain.OrderStatusCancelled, true},
		{"invalid status", domain.OrderStatus("SHIPPED"), false},
		{"empty status", domain.OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsValid())
		})
	}
}
