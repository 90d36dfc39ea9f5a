package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	schedulex "github.com/pattarachai/medisched/schedule"
)

// patientIDArg is injected by the booking worker from the request state;
// the model never supplies it, so it cannot book on behalf of someone else.
const patientIDArg = "patient_id"

func setAppointment(ctx context.Context, store schedulex.Store, notifier Notifier, args map[string]any) (Result, error) {
	doctor, err := doctorArg(args, "doctor_name")
	if err != nil {
		return Result{Tool: ToolSetAppointment, Error: err.Error()}, nil
	}
	date, err := dateArg(args, "desired_date")
	if err != nil {
		return Result{Tool: ToolSetAppointment, Error: err.Error()}, nil
	}
	slotTime, err := timeArg(args, "desired_time")
	if err != nil {
		return Result{Tool: ToolSetAppointment, Error: err.Error()}, nil
	}
	patientID, err := intArg(args, patientIDArg)
	if err != nil {
		return Result{Tool: ToolSetAppointment, Error: err.Error()}, nil
	}

	switch err := store.Reserve(ctx, doctor, date, slotTime, patientID); {
	case err == nil:
		notify(ctx, notifier, "set", schedulex.Slot{Doctor: doctor, Date: date, Time: slotTime, PatientID: patientID})
		return Result{
			Tool:   ToolSetAppointment,
			Output: fmt.Sprintf("Successfully booked %s on %s at %s", doctor, date, slotTime),
		}, nil
	case errors.Is(err, schedulex.ErrNoSuchSlot):
		return Result{
			Tool:  ToolSetAppointment,
			Error: fmt.Sprintf("No slot exists for %s on %s at %s", doctor, date, slotTime),
		}, nil
	case errors.Is(err, schedulex.ErrSlotTaken):
		return Result{
			Tool:  ToolSetAppointment,
			Error: fmt.Sprintf("The slot with %s on %s at %s is no longer available", doctor, date, slotTime),
		}, nil
	default:
		return Result{}, fmt.Errorf("reserve slot: %w", err)
	}
}

func cancelAppointment(ctx context.Context, store schedulex.Store, notifier Notifier, args map[string]any) (Result, error) {
	doctor, err := doctorArg(args, "doctor_name")
	if err != nil {
		return Result{Tool: ToolCancelAppointment, Error: err.Error()}, nil
	}
	date, err := dateArg(args, "desired_date")
	if err != nil {
		return Result{Tool: ToolCancelAppointment, Error: err.Error()}, nil
	}
	slotTime, err := timeArg(args, "desired_time")
	if err != nil {
		return Result{Tool: ToolCancelAppointment, Error: err.Error()}, nil
	}
	patientID, err := intArg(args, patientIDArg)
	if err != nil {
		return Result{Tool: ToolCancelAppointment, Error: err.Error()}, nil
	}

	switch err := store.Release(ctx, doctor, date, slotTime, patientID); {
	case err == nil:
		notify(ctx, notifier, "cancel", schedulex.Slot{Doctor: doctor, Date: date, Time: slotTime, PatientID: patientID})
		return Result{
			Tool:   ToolCancelAppointment,
			Output: fmt.Sprintf("Successfully cancelled the appointment with %s on %s at %s", doctor, date, slotTime),
		}, nil
	case errors.Is(err, schedulex.ErrNoReservation):
		return Result{
			Tool:  ToolCancelAppointment,
			Error: "You don't have any appointment with that specification",
		}, nil
	default:
		return Result{}, fmt.Errorf("release slot: %w", err)
	}
}

func rescheduleAppointment(ctx context.Context, store schedulex.Store, notifier Notifier, args map[string]any) (Result, error) {
	doctor, err := doctorArg(args, "doctor_name")
	if err != nil {
		return Result{Tool: ToolRescheduleAppointment, Error: err.Error()}, nil
	}
	oldDate, err := dateArg(args, "old_date")
	if err != nil {
		return Result{Tool: ToolRescheduleAppointment, Error: err.Error()}, nil
	}
	oldTime, err := timeArg(args, "old_time")
	if err != nil {
		return Result{Tool: ToolRescheduleAppointment, Error: err.Error()}, nil
	}
	newDate, err := dateArg(args, "new_date")
	if err != nil {
		return Result{Tool: ToolRescheduleAppointment, Error: err.Error()}, nil
	}
	newTime, err := timeArg(args, "new_time")
	if err != nil {
		return Result{Tool: ToolRescheduleAppointment, Error: err.Error()}, nil
	}
	patientID, err := intArg(args, patientIDArg)
	if err != nil {
		return Result{Tool: ToolRescheduleAppointment, Error: err.Error()}, nil
	}

	switch err := store.Reschedule(ctx, doctor, oldDate, oldTime, newDate, newTime, patientID); {
	case err == nil:
		notify(ctx, notifier, "reschedule", schedulex.Slot{Doctor: doctor, Date: newDate, Time: newTime, PatientID: patientID})
		return Result{
			Tool:   ToolRescheduleAppointment,
			Output: fmt.Sprintf("Successfully rescheduled with %s to %s at %s", doctor, newDate, newTime),
		}, nil
	case errors.Is(err, schedulex.ErrNewSlotUnavailable):
		return Result{
			Tool:  ToolRescheduleAppointment,
			Error: fmt.Sprintf("The desired slot with %s on %s at %s is not available; your current appointment is unchanged", doctor, newDate, newTime),
		}, nil
	case errors.Is(err, schedulex.ErrNoReservation):
		return Result{
			Tool:  ToolRescheduleAppointment,
			Error: "You don't have any appointment with that specification",
		}, nil
	default:
		return Result{}, fmt.Errorf("reschedule slot: %w", err)
	}
}

func notify(ctx context.Context, notifier Notifier, action string, slot schedulex.Slot) {
	if notifier == nil {
		return
	}
	if err := notifier.NotifyBooking(ctx, action, slot); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("booking notification failed")
	}
}
