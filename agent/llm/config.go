package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/pattarachai/medisched/agent/contract"
	openrouterx "github.com/pattarachai/medisched/pkg/openrouter"
)

// Config maps one OpenRouter account onto the three agent models. Every
// worker falls back to the default Model unless a per-worker override is
// set; a negative temperature override means "use the default".
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	SupervisorModel        string  `envconfig:"SUPERVISOR_MODEL" split_words:"true"`
	InformationModel       string  `envconfig:"INFORMATION_MODEL" split_words:"true"`
	BookingModel           string  `envconfig:"BOOKING_MODEL" split_words:"true"`
	SupervisorTemperature  float32 `envconfig:"SUPERVISOR_TEMPERATURE" split_words:"true" default:"-1"`
	InformationTemperature float32 `envconfig:"INFORMATION_TEMPERATURE" split_words:"true" default:"-1"`
	BookingTemperature     float32 `envconfig:"BOOKING_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model configuration used for one worker type.
func (c Config) OpenRouterFor(worker contractx.WorkerType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch worker {
	case contractx.WorkerTypeSupervisor:
		if v := strings.TrimSpace(c.SupervisorModel); v != "" {
			modelName = v
		}
		if c.SupervisorTemperature >= 0 {
			temp = c.SupervisorTemperature
		}
	case contractx.WorkerTypeInformation:
		if v := strings.TrimSpace(c.InformationModel); v != "" {
			modelName = v
		}
		if c.InformationTemperature >= 0 {
			temp = c.InformationTemperature
		}
	case contractx.WorkerTypeBooking:
		if v := strings.TrimSpace(c.BookingModel); v != "" {
			modelName = v
		}
		if c.BookingTemperature >= 0 {
			temp = c.BookingTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
