package records

import (
	"context"
	"testing"
	"time"
)

func TestSampleSourceAppointmentsAreDatedToday(t *testing.T) {
	fixed := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	src := &SampleSource{Now: func() time.Time { return fixed }}

	apts, err := src.Appointments(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("appointments: %v", err)
	}
	if len(apts) != 1 {
		t.Fatalf("expected one appointment, got %d", len(apts))
	}
	if apts[0].UserID != "user-1" || apts[0].Date != "2026-10-14" || apts[0].Status != StatusConfirmed {
		t.Fatalf("unexpected appointment %+v", apts[0])
	}
}

func TestSampleSourceMedicalRecords(t *testing.T) {
	recs, err := NewSampleSource().MedicalRecords(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(recs) != 1 || recs[0].Hospital != "Bumrungrad International" {
		t.Fatalf("unexpected records %+v", recs)
	}
}
