package schedule

import (
	"strings"
	"testing"
)

const sampleLedger = `doctor_name,specialization,date_slot,is_available,patient_to_attend
John Doe,general_dentist,02-01-2024 9.00,True,
Jane Smith,general_dentist,02-01-2024 9.30,False,1000760.0
Dr. Lisa Brown,cosmetic dentist,3-1-2024 14.00,true,
`

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	slots, err := LoadCSV(strings.NewReader(sampleLedger))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(slots))
	}

	first := slots[0]
	if first.Doctor != "john doe" || first.Specialization != "general_dentist" {
		t.Fatalf("unexpected first slot: %+v", first)
	}
	if first.Date != "02-01-2024" || first.Time != "9:00" {
		t.Fatalf("date_slot not normalized: %+v", first)
	}
	if !first.Available || first.PatientID != 0 {
		t.Fatalf("unexpected availability: %+v", first)
	}

	second := slots[1]
	if second.Available {
		t.Fatalf("expected reserved slot: %+v", second)
	}
	if second.PatientID != 1000760 {
		t.Fatalf("float patient id not parsed: %+v", second)
	}

	third := slots[2]
	if third.Doctor != "lisa brown" || third.Specialization != "cosmetic_dentist" {
		t.Fatalf("honorific or synonym not normalized: %+v", third)
	}
	if third.Date != "03-01-2024" || third.Time != "14:00" {
		t.Fatalf("loose date not zero-padded: %+v", third)
	}
}

func TestLoadCSVRejectsMissingColumns(t *testing.T) {
	t.Parallel()

	_, err := LoadCSV(strings.NewReader("doctor_name,date_slot\nJohn Doe,02-01-2024 9.00\n"))
	if err == nil {
		t.Fatal("expected error for missing header columns")
	}
}

func TestLoadCSVRejectsUnknownDoctor(t *testing.T) {
	t.Parallel()

	bad := "doctor_name,specialization,date_slot,is_available,patient_to_attend\nGregory House,general_dentist,02-01-2024 9.00,True,\n"
	_, err := LoadCSV(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error for doctor outside the roster")
	}
}

func TestLoadCSVEmptyInput(t *testing.T) {
	t.Parallel()

	slots, err := LoadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots from empty input", len(slots))
	}
}
