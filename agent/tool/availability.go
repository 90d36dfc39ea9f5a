package tool

import (
	"context"
	"fmt"
	"strings"

	schedulex "github.com/pattarachai/medisched/schedule"
)

func checkByDoctor(ctx context.Context, store schedulex.Store, args map[string]any) (Result, error) {
	doctor, err := doctorArg(args, "doctor_name")
	if err != nil {
		return Result{Tool: ToolCheckByDoctor, Error: err.Error()}, nil
	}
	date, err := dateArg(args, "desired_date")
	if err != nil {
		return Result{Tool: ToolCheckByDoctor, Error: err.Error()}, nil
	}

	slots, err := store.QueryByDoctor(ctx, doctor, date)
	if err != nil {
		return Result{}, fmt.Errorf("query by doctor: %w", err)
	}

	if len(slots) == 0 {
		return Result{
			Tool:   ToolCheckByDoctor,
			Output: fmt.Sprintf("No availability for %s on %s", doctor, date),
		}, nil
	}

	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.Time)
	}
	return Result{
		Tool: ToolCheckByDoctor,
		Output: fmt.Sprintf("Availability for %s on %s:\nAvailable slots: %s",
			doctor, date, strings.Join(times, ", ")),
	}, nil
}

func checkBySpecialization(ctx context.Context, store schedulex.Store, args map[string]any) (Result, error) {
	rawSpec, err := stringArg(args, "specialization")
	if err != nil {
		return Result{Tool: ToolCheckBySpecialization, Error: err.Error()}, nil
	}
	spec, err := schedulex.NormalizeSpecialization(rawSpec)
	if err != nil {
		// Models occasionally hand over a whole phrase ("looking for an
		// oral surgeon") instead of the bare specialization.
		extracted, ok := schedulex.ExtractSpecialization(rawSpec)
		if !ok {
			return Result{
				Tool:  ToolCheckBySpecialization,
				Error: fmt.Sprintf("unknown specialization %q, options: %s", rawSpec, strings.Join(schedulex.Specializations(), ", ")),
			}, nil
		}
		spec = extracted
	}
	date, err := dateArg(args, "desired_date")
	if err != nil {
		return Result{Tool: ToolCheckBySpecialization, Error: err.Error()}, nil
	}

	slots, err := store.QueryBySpecialization(ctx, spec, date)
	if err != nil {
		return Result{}, fmt.Errorf("query by specialization: %w", err)
	}

	label := schedulex.SpecializationLabel(spec)
	if len(slots) == 0 {
		return Result{
			Tool:   ToolCheckBySpecialization,
			Output: fmt.Sprintf("No %s available on %s", label, date),
		}, nil
	}

	// group slot times per doctor, 12-hour clock for readability
	byDoctor := make(map[string][]string)
	order := make([]string, 0)
	for _, s := range slots {
		if _, seen := byDoctor[s.Doctor]; !seen {
			order = append(order, s.Doctor)
		}
		byDoctor[s.Doctor] = append(byDoctor[s.Doctor], schedulex.FormatClock12(s.Time))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available %ss on %s:\n", label, date)
	for _, doctor := range order {
		fmt.Fprintf(&b, "\nDr. %s:\n  %s\n", titleCase(doctor), strings.Join(byDoctor[doctor], ", "))
	}
	return Result{Tool: ToolCheckBySpecialization, Output: b.String()}, nil
}

func titleCase(name string) string {
	fields := strings.Fields(name)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}
