package schedule

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

type slotKey struct {
	doctor string
	date   string
	time   string
}

// MemoryStore keeps the ledger in process memory behind a single mutex.
// It is the default backend for local runs and the fixture for tests;
// per-slot transitions are atomic because every mutation holds the lock.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[slotKey]Slot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[slotKey]Slot)}
}

var _ Store = (*MemoryStore)(nil)
var _ Seeder = (*MemoryStore)(nil)

func (m *MemoryStore) Seed(ctx context.Context, slots []Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range slots {
		if s.Doctor == "" || s.Date == "" || s.Time == "" {
			return fmt.Errorf("seed slot missing doctor/date/time: %+v", s)
		}
		m.slots[slotKey{s.Doctor, s.Date, s.Time}] = s
	}
	return nil
}

func (m *MemoryStore) QueryByDoctor(ctx context.Context, doctor, date string) ([]Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Slot
	for k, s := range m.slots {
		if k.doctor == doctor && k.date == date && s.Available {
			out = append(out, s)
		}
	}
	sortSlots(out)
	return out, nil
}

func (m *MemoryStore) QueryBySpecialization(ctx context.Context, specialization, date string) ([]Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Slot
	for k, s := range m.slots {
		if s.Specialization == specialization && k.date == date && s.Available {
			out = append(out, s)
		}
	}
	sortSlots(out)
	return out, nil
}

func (m *MemoryStore) Reserve(ctx context.Context, doctor, date, slotTime string, patientID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserveLocked(doctor, date, slotTime, patientID)
}

func (m *MemoryStore) Release(ctx context.Context, doctor, date, slotTime string, patientID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseLocked(doctor, date, slotTime, patientID)
}

// Reschedule validates both transitions before applying either, so a refusal
// leaves the old reservation exactly as it was.
func (m *MemoryStore) Reschedule(ctx context.Context, doctor, oldDate, oldTime, newDate, newTime string, patientID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldSlot, ok := m.slots[slotKey{doctor, oldDate, oldTime}]
	if !ok || oldSlot.Available || oldSlot.PatientID != patientID {
		return ErrNoReservation
	}
	newSlot, ok := m.slots[slotKey{doctor, newDate, newTime}]
	if !ok || !newSlot.Available {
		return ErrNewSlotUnavailable
	}

	if err := m.releaseLocked(doctor, oldDate, oldTime, patientID); err != nil {
		return err
	}
	return m.reserveLocked(doctor, newDate, newTime, patientID)
}

func (m *MemoryStore) reserveLocked(doctor, date, slotTime string, patientID int) error {
	k := slotKey{doctor, date, slotTime}
	s, ok := m.slots[k]
	if !ok {
		return ErrNoSuchSlot
	}
	if !s.Available {
		return ErrSlotTaken
	}
	s.Available = false
	s.PatientID = patientID
	m.slots[k] = s
	return nil
}

func (m *MemoryStore) releaseLocked(doctor, date, slotTime string, patientID int) error {
	k := slotKey{doctor, date, slotTime}
	s, ok := m.slots[k]
	if !ok || s.Available || s.PatientID != patientID {
		return ErrNoReservation
	}
	s.Available = true
	s.PatientID = 0
	m.slots[k] = s
	return nil
}

// Snapshot returns a copy of every slot, for tests and diagnostics.
func (m *MemoryStore) Snapshot() []Slot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Slot, 0, len(m.slots))
	for _, s := range m.slots {
		out = append(out, s)
	}
	sortSlots(out)
	return out
}

func sortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Doctor != slots[j].Doctor {
			return slots[i].Doctor < slots[j].Doctor
		}
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return clockOrder(slots[i].Time) < clockOrder(slots[j].Time)
	})
}

func clockOrder(slotTime string) int {
	m := timePattern.FindStringSubmatch(slotTime)
	if m == nil {
		return 0
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return hour*60 + minute
}
