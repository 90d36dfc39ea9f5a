package contract

import (
	"fmt"
	"strings"

	convx "github.com/pattarachai/medisched/agent/conversation"
)

// WorkerType names the agents that hold a Reasoning Service model.
type WorkerType string

const (
	WorkerTypeSupervisor  WorkerType = "supervisor"
	WorkerTypeInformation WorkerType = "information"
	WorkerTypeBooking     WorkerType = "booking"
)

// RouteTarget is the closed set of destinations a routing decision may name.
// Anything outside the set is a schema violation, never a silent fall-through.
type RouteTarget string

const (
	RouteInformation RouteTarget = "information"
	RouteBooking     RouteTarget = "booking"
	RouteTerminate   RouteTarget = "terminate"
)

// ParseRouteTarget validates a classifier-provided destination. The model
// occasionally echoes node-style names, so the historical aliases are
// accepted and normalized.
func ParseRouteTarget(raw string) (RouteTarget, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "information", "information_node":
		return RouteInformation, nil
	case "booking", "booking_node":
		return RouteBooking, nil
	case "terminate", "finish":
		return RouteTerminate, nil
	default:
		return "", fmt.Errorf("%w: unknown route target %q", ErrSchemaViolation, raw)
	}
}

// RouteDecision is produced fresh each hop and consumed immediately by the
// orchestrator. Rationale is diagnostic only.
type RouteDecision struct {
	Next      RouteTarget `json:"next"`
	Rationale string      `json:"rationale"`
}

type ClassifyRequest struct {
	PatientID int             `json:"patient_id"`
	History   []convx.Message `json:"history"`
}

type WorkerRequest struct {
	PatientID int             `json:"patient_id"`
	Query     string          `json:"query"`
	History   []convx.Message `json:"history"`
}
