package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/pattarachai/medisched/agent/contract"
	schedulex "github.com/pattarachai/medisched/schedule"
)

const (
	ToolCheckByDoctor         = "check_availability_by_doctor"
	ToolCheckBySpecialization = "check_availability_by_specialization"
	ToolSetAppointment        = "set_appointment"
	ToolCancelAppointment     = "cancel_appointment"
	ToolRescheduleAppointment = "reschedule_appointment"
)

// Result is what a worker feeds back into its finalize prompt after
// executing one tool call. Error carries a user-explainable validation or
// refusal text, never a process fault.
type Result struct {
	Tool   string `json:"tool"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Executor runs one named tool against the availability ledger.
type Executor func(ctx context.Context, tool string, args map[string]any) (Result, error)

// Notifier receives booking mutations after they commit. Publishing is
// best-effort; failures are logged by the implementation, not returned.
type Notifier interface {
	NotifyBooking(ctx context.Context, action string, slot schedulex.Slot) error
}

// BuildForWorker returns the tool schemas a worker's model may call and the
// executor that serves them.
func BuildForWorker(worker contractx.WorkerType, store schedulex.Store, notifier Notifier) ([]*schema.ToolInfo, Executor) {
	return InfosFor(worker), NewExecutor(worker, store, notifier)
}

// NewExecutor binds the worker's tool set to the ledger. Unknown tools
// come back as Result.Error, keeping the worker loop alive.
func NewExecutor(worker contractx.WorkerType, store schedulex.Store, notifier Notifier) Executor {
	return func(ctx context.Context, tool string, args map[string]any) (Result, error) {
		switch worker {
		case contractx.WorkerTypeInformation:
			switch tool {
			case ToolCheckByDoctor:
				return checkByDoctor(ctx, store, args)
			case ToolCheckBySpecialization:
				return checkBySpecialization(ctx, store, args)
			}
		case contractx.WorkerTypeBooking:
			switch tool {
			case ToolSetAppointment:
				return setAppointment(ctx, store, notifier, args)
			case ToolCancelAppointment:
				return cancelAppointment(ctx, store, notifier, args)
			case ToolRescheduleAppointment:
				return rescheduleAppointment(ctx, store, notifier, args)
			}
		}
		return Result{
			Tool:  tool,
			Error: fmt.Sprintf("tool=%s is unavailable for worker=%s", tool, worker),
		}, nil
	}
}

func InfosFor(worker contractx.WorkerType) []*schema.ToolInfo {
	doctorDesc := "Exact doctor name from the roster: " + strings.Join(schedulex.Doctors(), ", ")
	dateDesc := "Date in DD-MM-YYYY format, e.g. 02-01-2024"
	timeDesc := "Slot time as H:MM 24-hour clock, e.g. 10:00"

	switch worker {
	case contractx.WorkerTypeInformation:
		return []*schema.ToolInfo{
			{
				Name: ToolCheckByDoctor,
				Desc: "Check availability for a specific doctor by name and date. Use when the user names a doctor.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"doctor_name":  {Type: schema.String, Desc: doctorDesc, Required: true},
					"desired_date": {Type: schema.String, Desc: dateDesc, Required: true},
				}),
			},
			{
				Name: ToolCheckBySpecialization,
				Desc: "Check availability by specialization and date. Use when the user names a type of dentist instead of a doctor; map a bare \"dentist\" to general_dentist.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"specialization": {Type: schema.String, Desc: "One of: " + strings.Join(schedulex.Specializations(), ", "), Required: true},
					"desired_date":   {Type: schema.String, Desc: dateDesc, Required: true},
				}),
			},
		}
	case contractx.WorkerTypeBooking:
		return []*schema.ToolInfo{
			{
				Name: ToolSetAppointment,
				Desc: "Book an available slot for the patient. All parameters must come from the conversation, never guessed.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"doctor_name":  {Type: schema.String, Desc: doctorDesc, Required: true},
					"desired_date": {Type: schema.String, Desc: dateDesc, Required: true},
					"desired_time": {Type: schema.String, Desc: timeDesc, Required: true},
				}),
			},
			{
				Name: ToolCancelAppointment,
				Desc: "Cancel the patient's existing appointment with a doctor.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"doctor_name":  {Type: schema.String, Desc: doctorDesc, Required: true},
					"desired_date": {Type: schema.String, Desc: dateDesc, Required: true},
					"desired_time": {Type: schema.String, Desc: timeDesc, Required: true},
				}),
			},
			{
				Name: ToolRescheduleAppointment,
				Desc: "Move the patient's appointment with a doctor to a new date and time. Refused if the new slot is taken.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"doctor_name": {Type: schema.String, Desc: doctorDesc, Required: true},
					"old_date":    {Type: schema.String, Desc: dateDesc, Required: true},
					"old_time":    {Type: schema.String, Desc: timeDesc, Required: true},
					"new_date":    {Type: schema.String, Desc: dateDesc, Required: true},
					"new_time":    {Type: schema.String, Desc: timeDesc, Required: true},
				}),
			},
		}
	default:
		return nil
	}
}
