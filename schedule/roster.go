package schedule

import (
	"fmt"
	"sort"
	"strings"
)

// The clinic roster is a fixed, closed set. Both maps are read-only after
// init; tools validate against them before any store call.

const DefaultSpecialization = "general_dentist"

var doctorSpecializations = map[string]string{
	"kevin anderson":  "orthodontist",
	"robert martinez": "oral_surgeon",
	"susan davis":     "pediatric_dentist",
	"daniel miller":   "prosthodontist",
	"sarah wilson":    "emergency_dentist",
	"michael green":   "general_dentist",
	"lisa brown":      "cosmetic_dentist",
	"jane smith":      "general_dentist",
	"emily johnson":   "cosmetic_dentist",
	"john doe":        "general_dentist",
}

var specializationSet = map[string]struct{}{
	"general_dentist":   {},
	"cosmetic_dentist":  {},
	"prosthodontist":    {},
	"pediatric_dentist": {},
	"emergency_dentist": {},
	"oral_surgeon":      {},
	"orthodontist":      {},
}

// Common phrasings mapped to ledger specializations. A bare "dentist"
// resolves to general_dentist instead of a clarification question.
var specializationSynonyms = map[string]string{
	"dentist":           "general_dentist",
	"general dentist":   "general_dentist",
	"cosmetic dentist":  "cosmetic_dentist",
	"prosthodontist":    "prosthodontist",
	"pediatric dentist": "pediatric_dentist",
	"emergency dentist": "emergency_dentist",
	"oral surgeon":      "oral_surgeon",
	"orthodontist":      "orthodontist",
}

// Doctors returns the roster in stable order.
func Doctors() []string {
	names := make([]string, 0, len(doctorSpecializations))
	for name := range doctorSpecializations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specializations returns the closed specialization set in stable order.
func Specializations() []string {
	specs := make([]string, 0, len(specializationSet))
	for s := range specializationSet {
		specs = append(specs, s)
	}
	sort.Strings(specs)
	return specs
}

// NormalizeDoctor lowercases and strips honorifics, then checks the roster.
func NormalizeDoctor(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, "dr.")
	name = strings.TrimPrefix(name, "dr ")
	name = strings.Join(strings.Fields(name), " ")
	if _, ok := doctorSpecializations[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDoctor, raw)
	}
	return name, nil
}

// NormalizeSpecialization maps user phrasing onto a ledger specialization.
// It accepts both canonical snake_case identifiers and spoken synonyms.
func NormalizeSpecialization(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := specializationSet[s]; ok {
		return s, nil
	}
	spaced := strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")
	if mapped, ok := specializationSynonyms[spaced]; ok {
		return mapped, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSpecialization, raw)
}

// SpecializationOf reports a doctor's specialization.
func SpecializationOf(doctor string) (string, bool) {
	spec, ok := doctorSpecializations[doctor]
	return spec, ok
}

// SpecializationLabel renders a ledger identifier for user-facing text,
// e.g. "general_dentist" -> "general dentist".
func SpecializationLabel(specialization string) string {
	return strings.ReplaceAll(specialization, "_", " ")
}
