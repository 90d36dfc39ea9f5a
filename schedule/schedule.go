// Package schedule is the appointment ledger: a closed roster of doctors,
// their bookable slots, and atomic slot-state transitions. Concurrency
// correctness (two requests racing for one slot) lives here, behind the
// Store interface, not in the routing core.
package schedule

import (
	"context"
	"errors"
)

var (
	ErrNoSuchSlot            = errors.New("no such slot")
	ErrSlotTaken             = errors.New("slot already taken")
	ErrNoReservation         = errors.New("no matching reservation")
	ErrNewSlotUnavailable    = errors.New("new slot unavailable")
	ErrUnknownDoctor         = errors.New("unknown doctor")
	ErrUnknownSpecialization = errors.New("unknown specialization")
	ErrInvalidDate           = errors.New("invalid date, expected DD-MM-YYYY")
	ErrInvalidTime           = errors.New("invalid time, expected H:MM")
)

// Slot is one bookable unit of a doctor's calendar. PatientID is zero while
// the slot is unoccupied.
type Slot struct {
	Doctor         string `json:"doctor"`
	Specialization string `json:"specialization"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Available      bool   `json:"available"`
	PatientID      int    `json:"patient_id,omitempty"`
}

// Store is the availability ledger contract. Every mutation is atomic per
// slot: two concurrent reservations of the same slot resolve to exactly one
// success and one ErrSlotTaken.
//
// Reschedule moves a patient's reservation in one transition. If the new
// slot cannot be taken the old reservation is untouched; the patient never
// ends up holding neither slot.
type Store interface {
	QueryByDoctor(ctx context.Context, doctor, date string) ([]Slot, error)
	QueryBySpecialization(ctx context.Context, specialization, date string) ([]Slot, error)
	Reserve(ctx context.Context, doctor, date, slotTime string, patientID int) error
	Release(ctx context.Context, doctor, date, slotTime string, patientID int) error
	Reschedule(ctx context.Context, doctor, oldDate, oldTime, newDate, newTime string, patientID int) error
}

// Seeder is implemented by stores that can be bulk-loaded from a ledger
// snapshot, e.g. the CSV shipped with the clinic roster.
type Seeder interface {
	Seed(ctx context.Context, slots []Slot) error
}
