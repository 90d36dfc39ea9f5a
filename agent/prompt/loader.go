package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/supervisor.txt
	supervisorRaw string

	//go:embed template/information.txt
	informationRaw string

	//go:embed template/booking.txt
	bookingRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Supervisor  string
	Information string
	Booking     string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings. The embeds
// are compile-time, so this is safe to call concurrently.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Supervisor:  strings.TrimSpace(supervisorRaw),
		Information: strings.TrimSpace(informationRaw),
		Booking:     strings.TrimSpace(bookingRaw),
	}
}
