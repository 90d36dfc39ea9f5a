package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSeedSlotsMissingFileIsTolerated(t *testing.T) {
	t.Parallel()

	slots, err := loadSeedSlots(filepath.Join(t.TempDir(), "nope.csv"))
	if err != nil {
		t.Fatalf("loadSeedSlots() error = %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots from missing file", len(slots))
	}
}

func TestLoadSeedSlotsEmptyPath(t *testing.T) {
	t.Parallel()

	slots, err := loadSeedSlots("")
	if err != nil {
		t.Fatalf("loadSeedSlots() error = %v", err)
	}
	if slots != nil {
		t.Fatalf("expected no slots, got %v", slots)
	}
}

func TestLoadSeedSlotsParsesLedger(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := "doctor_name,specialization,date_slot,is_available,patient_to_attend\n" +
		"john doe,general_dentist,02-01-2024 9.00,True,\n" +
		"jane smith,general_dentist,02-01-2024 10.00,False,1000760.0\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write ledger: %v", err)
	}

	slots, err := loadSeedSlots(path)
	if err != nil {
		t.Fatalf("loadSeedSlots() error = %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].Doctor != "john doe" || slots[0].Time != "9:00" {
		t.Fatalf("unexpected first slot: %+v", slots[0])
	}
	if slots[1].PatientID != 1000760 {
		t.Fatalf("unexpected second slot: %+v", slots[1])
	}
}

func TestLoadSeedSlotsRejectsMalformedLedger(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := "doctor_name,specialization,date_slot,is_available,patient_to_attend\n" +
		"gregory house,general_dentist,02-01-2024 9.00,True,\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write ledger: %v", err)
	}

	if _, err := loadSeedSlots(path); err == nil {
		t.Fatal("expected error for doctor outside the roster")
	}
}
