package schedule

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// The clinic ships its roster as a CSV ledger with columns
// doctor_name, specialization, date_slot, is_available, patient_to_attend,
// where date_slot is "DD-MM-YYYY H.MM". LoadCSV normalizes that historical
// shape into Slot values.

func LoadCSVFile(path string) ([]Slot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger csv: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

func LoadCSV(r io.Reader) ([]Slot, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, 0, len(records)-1)
	for i, record := range records[1:] {
		slot, err := recordToSlot(record, cols)
		if err != nil {
			return nil, fmt.Errorf("ledger csv row %d: %w", i+2, err)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

type csvColumns struct {
	doctor   int
	spec     int
	dateSlot int
	avail    int
	patient  int
}

func headerIndex(header []string) (csvColumns, error) {
	cols := csvColumns{doctor: -1, spec: -1, dateSlot: -1, avail: -1, patient: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "doctor_name":
			cols.doctor = i
		case "specialization":
			cols.spec = i
		case "date_slot":
			cols.dateSlot = i
		case "is_available":
			cols.avail = i
		case "patient_to_attend":
			cols.patient = i
		}
	}
	if cols.doctor < 0 || cols.spec < 0 || cols.dateSlot < 0 || cols.avail < 0 {
		return cols, fmt.Errorf("ledger csv header missing required columns: %v", header)
	}
	return cols, nil
}

func recordToSlot(record []string, cols csvColumns) (Slot, error) {
	get := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	doctor, err := NormalizeDoctor(get(cols.doctor))
	if err != nil {
		return Slot{}, err
	}
	spec, err := NormalizeSpecialization(get(cols.spec))
	if err != nil {
		return Slot{}, err
	}

	date, slotTime, err := splitDateSlot(get(cols.dateSlot))
	if err != nil {
		return Slot{}, err
	}

	available, err := strconv.ParseBool(strings.ToLower(get(cols.avail)))
	if err != nil {
		return Slot{}, fmt.Errorf("parse is_available %q: %w", get(cols.avail), err)
	}

	patientID := 0
	if raw := get(cols.patient); raw != "" {
		// legacy export sometimes writes patient ids as floats
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Slot{}, fmt.Errorf("parse patient_to_attend %q: %w", raw, err)
		}
		patientID = int(v)
	}

	return Slot{
		Doctor:         doctor,
		Specialization: spec,
		Date:           date,
		Time:           slotTime,
		Available:      available,
		PatientID:      patientID,
	}, nil
}

func splitDateSlot(raw string) (string, string, error) {
	datePart, timePart, ok := strings.Cut(raw, " ")
	if !ok {
		return "", "", fmt.Errorf("date_slot %q is not \"date time\"", raw)
	}
	date, err := NormalizeDate(datePart)
	if err != nil {
		return "", "", err
	}
	slotTime, err := NormalizeTime(timePart)
	if err != nil {
		return "", "", err
	}
	return date, slotTime, nil
}
