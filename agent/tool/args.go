package tool

import (
	"fmt"
	"strconv"
	"strings"

	schedulex "github.com/pattarachai/medisched/schedule"
)

// Argument extraction never fails hard: a bad or missing value becomes a
// Result.Error the finalize prompt can turn into a clarification question.

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return strings.TrimSpace(s), nil
}

func intArg(args map[string]any, key string) (int, error) {
	raw, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

func doctorArg(args map[string]any, key string) (string, error) {
	raw, err := stringArg(args, key)
	if err != nil {
		return "", err
	}
	doctor, err := schedulex.NormalizeDoctor(raw)
	if err != nil {
		// Models sometimes pass the patient's phrasing through verbatim
		// ("maybe Dr. John Doe?"), so scan it before giving up.
		if extracted, ok := schedulex.ExtractDoctor(raw); ok {
			return extracted, nil
		}
		return "", fmt.Errorf("unknown doctor %q, roster: %s", raw, strings.Join(schedulex.Doctors(), ", "))
	}
	return doctor, nil
}

func dateArg(args map[string]any, key string) (string, error) {
	raw, err := stringArg(args, key)
	if err != nil {
		return "", err
	}
	date, err := schedulex.NormalizeDate(raw)
	if err != nil {
		// Accept relative phrasing ("tomorrow") copied straight from the
		// patient's message.
		if resolved, ok := schedulex.ResolveRelativeDate(raw); ok {
			return resolved, nil
		}
		return "", fmt.Errorf("invalid date %q, use DD-MM-YYYY (e.g. 02-01-2024)", raw)
	}
	return date, nil
}

func timeArg(args map[string]any, key string) (string, error) {
	raw, err := stringArg(args, key)
	if err != nil {
		return "", err
	}
	slotTime, err := schedulex.NormalizeTime(raw)
	if err != nil {
		return "", fmt.Errorf("invalid time %q, use H:MM (e.g. 10:00)", raw)
	}
	return slotTime, nil
}
