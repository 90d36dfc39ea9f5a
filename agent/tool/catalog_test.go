package tool

import (
	"context"
	"strings"
	"testing"

	contractx "github.com/pattarachai/medisched/agent/contract"
	schedulex "github.com/pattarachai/medisched/schedule"
)

func seededStore(t *testing.T) *schedulex.MemoryStore {
	t.Helper()
	store := schedulex.NewMemoryStore()
	err := store.Seed(context.Background(), []schedulex.Slot{
		{Doctor: "john doe", Specialization: "general_dentist", Date: "02-01-2024", Time: "9:00", Available: true},
		{Doctor: "john doe", Specialization: "general_dentist", Date: "02-01-2024", Time: "13:00", Available: true},
		{Doctor: "jane smith", Specialization: "general_dentist", Date: "03-01-2024", Time: "10:00", Available: true},
		{Doctor: "lisa brown", Specialization: "cosmetic_dentist", Date: "02-01-2024", Time: "11:00", Available: false, PatientID: 555},
	})
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return store
}

func TestInfosForClosedToolSets(t *testing.T) {
	t.Parallel()

	infoNames := map[string]bool{}
	for _, info := range InfosFor(contractx.WorkerTypeInformation) {
		infoNames[info.Name] = true
	}
	if len(infoNames) != 2 || !infoNames[ToolCheckByDoctor] || !infoNames[ToolCheckBySpecialization] {
		t.Fatalf("unexpected information tool set: %v", infoNames)
	}

	bookingNames := map[string]bool{}
	for _, info := range InfosFor(contractx.WorkerTypeBooking) {
		bookingNames[info.Name] = true
	}
	if len(bookingNames) != 3 || !bookingNames[ToolSetAppointment] || !bookingNames[ToolCancelAppointment] || !bookingNames[ToolRescheduleAppointment] {
		t.Fatalf("unexpected booking tool set: %v", bookingNames)
	}

	if infos := InfosFor(contractx.WorkerTypeSupervisor); len(infos) != 0 {
		t.Fatalf("supervisor must have no tools, got %d", len(infos))
	}
}

func TestExecutorRefusesCrossWorkerTool(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(contractx.WorkerTypeInformation, seededStore(t), nil)
	result, err := exec(context.Background(), ToolSetAppointment, map[string]any{
		"doctor_name": "john doe", "desired_date": "02-01-2024", "desired_time": "9:00", "patient_id": 1,
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if result.Error == "" {
		t.Fatal("expected refusal for booking tool on information worker")
	}
}

func TestCheckByDoctor(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(contractx.WorkerTypeInformation, seededStore(t), nil)

	result, err := exec(context.Background(), ToolCheckByDoctor, map[string]any{
		"doctor_name": "Dr. John Doe", "desired_date": "2-1-2024",
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if result.Error != "" {
		t.Fatalf("unexpected tool error: %s", result.Error)
	}
	if !strings.Contains(result.Output, "9:00") || !strings.Contains(result.Output, "13:00") {
		t.Fatalf("output missing slots: %q", result.Output)
	}

	result, err = exec(context.Background(), ToolCheckByDoctor, map[string]any{
		"doctor_name": "jane smith", "desired_date": "02-01-2024",
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if result.Output != "No availability for jane smith on 02-01-2024" {
		t.Fatalf("unexpected empty-day output: %q", result.Output)
	}
}

func TestCheckBySpecializationDentistScenario(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(contractx.WorkerTypeInformation, seededStore(t), nil)

	// a bare "dentist" resolves to general_dentist instead of a question
	result, err := exec(context.Background(), ToolCheckBySpecialization, map[string]any{
		"specialization": "dentist", "desired_date": "02-01-2024",
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if !strings.Contains(result.Output, "Dr. John Doe:") {
		t.Fatalf("output missing doctor grouping: %q", result.Output)
	}
	if !strings.Contains(result.Output, "9:00 AM") || !strings.Contains(result.Output, "1:00 PM") {
		t.Fatalf("output not in 12-hour clock: %q", result.Output)
	}

	result, err = exec(context.Background(), ToolCheckBySpecialization, map[string]any{
		"specialization": "cosmetic dentist", "desired_date": "02-01-2024",
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if result.Output != "No cosmetic dentist available on 02-01-2024" {
		t.Fatalf("unexpected empty-day output: %q", result.Output)
	}
}

func TestFreeTextArgumentsResolve(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(contractx.WorkerTypeInformation, seededStore(t), nil)

	// a model relaying the patient's wording verbatim still reaches the ledger
	result, err := exec(context.Background(), ToolCheckByDoctor, map[string]any{
		"doctor_name": "maybe Dr. John Doe?", "desired_date": "tomorrow",
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if result.Error != "" {
		t.Fatalf("unexpected tool error: %s", result.Error)
	}
	if !strings.Contains(result.Output, "9:00") {
		t.Fatalf("output missing slots: %q", result.Output)
	}

	result, err = exec(context.Background(), ToolCheckBySpecialization, map[string]any{
		"specialization": "any cosmetic dentist available?", "desired_date": "02-01-2024",
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if result.Output != "No cosmetic dentist available on 02-01-2024" {
		t.Fatalf("phrase did not resolve to a specialization: %q", result.Output)
	}

	result, err = exec(context.Background(), ToolCheckByDoctor, map[string]any{
		"doctor_name": "john doe", "desired_date": "whenever works",
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if !strings.Contains(result.Error, "invalid date") {
		t.Fatalf("expected date refusal for undatable phrase, got %q", result.Error)
	}
}

func TestSetAppointmentRefusals(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	exec := NewExecutor(contractx.WorkerTypeBooking, store, nil)

	result, err := exec(context.Background(), ToolSetAppointment, map[string]any{
		"doctor_name": "lisa brown", "desired_date": "02-01-2024", "desired_time": "11:00", "patient_id": 42,
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if !strings.Contains(result.Error, "no longer available") {
		t.Fatalf("expected taken-slot refusal, got %q", result.Error)
	}

	result, err = exec(context.Background(), ToolSetAppointment, map[string]any{
		"doctor_name": "john doe", "desired_date": "09-01-2024", "desired_time": "9:00", "patient_id": 42,
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if !strings.Contains(result.Error, "No slot exists") {
		t.Fatalf("expected missing-slot refusal, got %q", result.Error)
	}
}

func TestBookingRoundTrip(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	exec := NewExecutor(contractx.WorkerTypeBooking, store, nil)
	ctx := context.Background()

	result, err := exec(ctx, ToolSetAppointment, map[string]any{
		"doctor_name": "john doe", "desired_date": "02-01-2024", "desired_time": "9:00", "patient_id": float64(1000760),
	})
	if err != nil {
		t.Fatalf("set exec() error = %v", err)
	}
	if result.Error != "" {
		t.Fatalf("set refused: %s", result.Error)
	}

	result, err = exec(ctx, ToolCancelAppointment, map[string]any{
		"doctor_name": "john doe", "desired_date": "02-01-2024", "desired_time": "9:00", "patient_id": 999,
	})
	if err != nil {
		t.Fatalf("cancel exec() error = %v", err)
	}
	if result.Error != "You don't have any appointment with that specification" {
		t.Fatalf("expected wrong-patient refusal, got %q", result.Error)
	}

	result, err = exec(ctx, ToolCancelAppointment, map[string]any{
		"doctor_name": "john doe", "desired_date": "02-01-2024", "desired_time": "9:00", "patient_id": 1000760,
	})
	if err != nil {
		t.Fatalf("cancel exec() error = %v", err)
	}
	if result.Error != "" {
		t.Fatalf("cancel refused: %s", result.Error)
	}

	slots, err := store.QueryByDoctor(ctx, "john doe", "02-01-2024")
	if err != nil {
		t.Fatalf("QueryByDoctor() error = %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("ledger not restored after cancel: %+v", slots)
	}
}

func TestRescheduleAppointment(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	exec := NewExecutor(contractx.WorkerTypeBooking, store, nil)
	ctx := context.Background()

	if _, err := exec(ctx, ToolSetAppointment, map[string]any{
		"doctor_name": "john doe", "desired_date": "02-01-2024", "desired_time": "9:00", "patient_id": 7,
	}); err != nil {
		t.Fatalf("set exec() error = %v", err)
	}

	result, err := exec(ctx, ToolRescheduleAppointment, map[string]any{
		"doctor_name": "john doe",
		"old_date":    "02-01-2024", "old_time": "9:00",
		"new_date": "02-01-2024", "new_time": "13:00",
		"patient_id": 7,
	})
	if err != nil {
		t.Fatalf("reschedule exec() error = %v", err)
	}
	if result.Error != "" {
		t.Fatalf("reschedule refused: %s", result.Error)
	}
	if !strings.Contains(result.Output, "13:00") {
		t.Fatalf("unexpected output: %q", result.Output)
	}
}

func TestArgumentValidationBecomesResultError(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(contractx.WorkerTypeBooking, seededStore(t), nil)

	result, err := exec(context.Background(), ToolSetAppointment, map[string]any{
		"doctor_name": "Dr. Nobody", "desired_date": "02-01-2024", "desired_time": "9:00", "patient_id": 1,
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if !strings.Contains(result.Error, "unknown doctor") {
		t.Fatalf("expected roster refusal, got %q", result.Error)
	}

	result, err = exec(context.Background(), ToolSetAppointment, map[string]any{
		"doctor_name": "john doe", "desired_date": "someday", "desired_time": "9:00", "patient_id": 1,
	})
	if err != nil {
		t.Fatalf("exec() error = %v", err)
	}
	if !strings.Contains(result.Error, "invalid date") {
		t.Fatalf("expected date refusal, got %q", result.Error)
	}
}
