package telemetry

import (
	"context"

	"github.com/scg/portal/internal/domain/billing"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/customer"
	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/domain/report"
	"github.com/scg/portal/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// PortalMetrics turns domain events into business counters. It subscribes
// to the event bus like any other handler.
type PortalMetrics struct {
	eventsTotal         *Counter
	reportsUploaded     *Counter
	findingsStored      *Counter
	uploadWarnings      *Counter
	findingStatusChange *Counter
	paymentsRecorded    *Counter
	paymentAmountCents  *Counter
}

// NewPortalMetrics creates the business instruments on meter
func NewPortalMetrics(meter metric.Meter) (*PortalMetrics, error) {
	m := &PortalMetrics{}
	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&m.eventsTotal, "portal_domain_events_total", "Domain events published", "{event}"},
		{&m.reportsUploaded, "portal_reports_uploaded_total", "Scanner reports uploaded", "{report}"},
		{&m.findingsStored, "portal_findings_stored_total", "Findings stored from uploads", "{finding}"},
		{&m.uploadWarnings, "portal_upload_warnings_total", "Upload entries skipped with a warning", "{warning}"},
		{&m.findingStatusChange, "portal_finding_status_changes_total", "Findings moved to a new status", "{finding}"},
		{&m.paymentsRecorded, "portal_payments_recorded_total", "Contract payments recorded", "{payment}"},
		{&m.paymentAmountCents, "portal_payment_amount_cents_total", "Sum of recorded payments in cents", "{cent}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}
	return m, nil
}

// EventTypes returns the event types this handler is interested in
func (m *PortalMetrics) EventTypes() []string {
	return []string{
		customer.EventTypeCustomerCreated,
		customer.EventTypeCustomerDeleted,
		contract.EventTypeContractCreated,
		contract.EventTypeContractStatusChanged,
		contract.EventTypeContractDeleted,
		billing.EventTypePaymentRecorded,
		report.EventTypeReportUploaded,
		report.EventTypeFindingStatusChanged,
		identity.EventTypeUserCreated,
		identity.EventTypePasswordResetRequested,
		identity.EventTypeUserDeactivated,
	}
}

// Handle records the event. It never fails the publisher.
func (m *PortalMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.eventsTotal.Inc(ctx, AttrEventType.String(event.EventType()))

	switch e := event.(type) {
	case *report.ReportUploadedEvent:
		kind := AttrReportKind.String(string(e.Kind))
		m.reportsUploaded.Inc(ctx, kind)
		m.findingsStored.Add(ctx, int64(e.FindingCount), kind)
		if e.WarningCount > 0 {
			m.uploadWarnings.Add(ctx, int64(e.WarningCount), kind)
		}
	case *report.FindingStatusChangedEvent:
		m.findingStatusChange.Add(ctx, int64(e.UpdatedCount), AttrFindingStatus.String(string(e.NewStatus)))
	case *billing.PaymentRecordedEvent:
		method := AttrPaymentMethod.String(string(e.Method))
		m.paymentsRecorded.Inc(ctx, method)
		m.paymentAmountCents.Add(ctx, e.Amount.Shift(2).IntPart(), method)
	}
	return nil
}
