// Package booking implements the multi-step appointment request form.
package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/asia-medicare/medicare_portal/internal/records"
)

// ErrInvalidDraft reports a booking step that fails validation.
var ErrInvalidDraft = errors.New("invalid booking")

// MaxNotesLength bounds the free-text details of step 3, in characters.
const MaxNotesLength = 2000

// Step is a page of the booking form.
type Step int

const (
	StepService Step = iota + 1
	StepSchedule
	StepDetails
)

// Steps lists the form pages in order.
func Steps() []Step { return []Step{StepService, StepSchedule, StepDetails} }

func (s Step) String() string {
	switch s {
	case StepService:
		return "Service"
	case StepSchedule:
		return "Date & Time"
	case StepDetails:
		return "Details"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

var bookableServices = []string{
	"Full Executive Check-up",
	"Specialist Consultation",
	"Dental Care",
	"Oncology Treatment",
	"Plastic Surgery",
	"Orthopedic Surgery",
}

// Services returns the services a member can book.
func Services() []string {
	out := make([]string, len(bookableServices))
	copy(out, bookableServices)
	return out
}

// TimeSlot is the preferred part of the day.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotFlexible  TimeSlot = "flexible"
)

// Label is the display text of the slot.
func (t TimeSlot) Label() string {
	switch t {
	case SlotMorning:
		return "Morning (08:00 - 12:00)"
	case SlotAfternoon:
		return "Afternoon (13:00 - 17:00)"
	case SlotFlexible:
		return "Flexible"
	}
	return string(t)
}

// Valid reports whether t is a known slot.
func (t TimeSlot) Valid() bool {
	switch t {
	case SlotMorning, SlotAfternoon, SlotFlexible:
		return true
	}
	return false
}

// Draft is the form as filled so far.
type Draft struct {
	Service  string   `json:"service"`
	Date     string   `json:"date"`
	TimeSlot TimeSlot `json:"time_slot"`
	Notes    string   `json:"notes"`
}

// ValidateStep checks the fields introduced on step against today's date.
func ValidateStep(step Step, d Draft, today time.Time) error {
	switch step {
	case StepService:
		for _, s := range bookableServices {
			if d.Service == s {
				return nil
			}
		}
		return fmt.Errorf("%w: select a service", ErrInvalidDraft)
	case StepSchedule:
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(d.Date))
		if err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidDraft)
		}
		y, m, day := today.Date()
		if date.Before(time.Date(y, m, day, 0, 0, 0, 0, time.UTC)) {
			return fmt.Errorf("%w: date is in the past", ErrInvalidDraft)
		}
		if !d.TimeSlot.Valid() {
			return fmt.Errorf("%w: choose a time slot", ErrInvalidDraft)
		}
		return nil
	case StepDetails:
		if utf8.RuneCountInString(d.Notes) > MaxNotesLength {
			return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidDraft, MaxNotesLength)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown step %d", ErrInvalidDraft, int(step))
	}
}

// Validate checks every step.
func (d Draft) Validate(today time.Time) error {
	for _, s := range Steps() {
		if err := ValidateStep(s, d, today); err != nil {
			return err
		}
	}
	return nil
}

// Booking is a submitted appointment request awaiting confirmation.
type Booking struct {
	ID        string                    `json:"id"`
	UserID    string                    `json:"userId"`
	UserName  string                    `json:"userName"`
	UserPhone string                    `json:"userPhone"`
	Service   string                    `json:"service"`
	Date      string                    `json:"date"`
	TimeSlot  TimeSlot                  `json:"timeSlot"`
	Notes     string                    `json:"notes,omitempty"`
	Status    records.AppointmentStatus `json:"status"`
	CreatedAt time.Time                 `json:"createdAt"`
}

// Appointment renders the booking as an appointment row.
func (b Booking) Appointment() records.Appointment {
	return records.Appointment{
		ID:        b.ID,
		UserID:    b.UserID,
		UserName:  b.UserName,
		UserPhone: b.UserPhone,
		Date:      b.Date,
		Time:      b.TimeSlot.Label(),
		Service:   b.Service,
		Status:    b.Status,
	}
}

// ServiceCategory groups the marketing service list.
type ServiceCategory struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// Categories returns the service catalog shown on the services page.
func Categories() []ServiceCategory {
	return []ServiceCategory{
		{Title: "Medical Check-ups", Items: []string{"Executive Health Screening", "Cancer Screening", "Genetic Testing", "Heart Assessment"}},
		{Title: "Medical Tourism", Items: []string{"Visa Assistance", "Flight Booking", "Hospital Selection", "Multilingual Escorts"}},
		{Title: "Treatment Plans", Items: []string{"Oncology Care", "Orthopedic Surgery", "In-Vitro Fertilization", "Stem Cell Therapy"}},
		{Title: "Luxury Concierge", Items: []string{"Airport Fast Track", "Limousine Transfer", "5-Star Hotel Stay", "Private Nursing"}},
	}
}

// PartnerHospitals lists the featured partner hospitals.
func PartnerHospitals() []string {
	return []string{
		"BPK 9 International", "Bangkok Hospital Siriroj", "Yanhee International", "Vejthani Hospital",
		"CHG Chularat 3", "Phyathai 1 & 2 & 3", "Bumrungrad International", "VitalLife",
		"MedPark Hospital", "Samitivej Sukhumvit", "Panacee Medical Center", "Zen Cell Rejuvenation",
		"Rutnin Eye Hospital", "Praram 9 Hospital", "RAKxa Bang Krachao",
	}
}
