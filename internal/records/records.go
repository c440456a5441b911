// Package records provides appointment and medical history data for members.
package records

import (
	"context"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Appointment is a scheduled visit.
type Appointment struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	UserName  string            `json:"userName"`
	UserPhone string            `json:"userPhone"`
	UserPhoto string            `json:"userPhoto,omitempty"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	Service   string            `json:"service"`
	Doctor    string            `json:"doctor,omitempty"`
	Status    AppointmentStatus `json:"status"`
	Addons    []string          `json:"addons,omitempty"`
}

// MedicalRecord is one entry of a member's treatment history.
type MedicalRecord struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Hospital  string `json:"hospital"`
	Doctor    string `json:"doctor"`
	Diagnosis string `json:"diagnosis"`
	ReportURL string `json:"reportUrl,omitempty"`
}

// Source supplies records for a member. A production deployment backs this
// with the hospital records service.
type Source interface {
	Appointments(ctx context.Context, userID string) ([]Appointment, error)
	MedicalRecords(ctx context.Context, userID string) ([]MedicalRecord, error)
}

// SampleSource returns fixed sample data.
type SampleSource struct {
	Now func() time.Time
}

// NewSampleSource returns a SampleSource dated from the wall clock.
func NewSampleSource() *SampleSource {
	return &SampleSource{Now: time.Now}
}

// Appointments returns one confirmed check-up dated today.
func (s *SampleSource) Appointments(_ context.Context, userID string) ([]Appointment, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return []Appointment{{
		ID:        "apt-demo-1",
		UserID:    userID,
		UserName:  "Demo VIP Member",
		UserPhone: "0812345678",
		Date:      now().Format(time.DateOnly),
		Time:      "10:00 AM",
		Service:   "Executive Check-up",
		Status:    StatusConfirmed,
		Addons:    []string{"VIP Fast Track", "Limo Transfer"},
	}}, nil
}

// MedicalRecords returns a single wellness check-up.
func (s *SampleSource) MedicalRecords(context.Context, string) ([]MedicalRecord, error) {
	return []MedicalRecord{{
		ID:        "med-rec-1",
		Date:      "2023-11-20",
		Hospital:  "Bumrungrad International",
		Doctor:    "Dr. Wichai S.",
		Diagnosis: "Wellness Checkup - Perfect Condition",
		ReportURL: "#",
	}}, nil
}
