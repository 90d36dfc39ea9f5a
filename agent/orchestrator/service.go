// Package orchestrator owns the driving loop for one request: invoke the
// supervisor, dispatch the chosen worker, fold its message back into the
// conversation, and repeat until a terminal decision.
package orchestrator

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	contractx "github.com/pattarachai/medisched/agent/contract"
	convx "github.com/pattarachai/medisched/agent/conversation"
	supervisorx "github.com/pattarachai/medisched/agent/supervisor"
)

// maxLoopHops is the orchestrator's own safety net, independent of the
// supervisor's hop budget, so the loop terminates even if the supervisor
// is swapped out for a misbehaving one.
const maxLoopHops = 10

const workerApology = "I apologize, but I ran into a problem handling that step. Please try again."

type Service struct {
	supervisor *supervisorx.Supervisor
	registry   contractx.Registry
}

func New(sup *supervisorx.Supervisor, registry contractx.Registry) (*Service, error) {
	if sup == nil {
		return nil, errors.New("supervisor is required")
	}
	if registry == nil {
		return nil, errors.New("worker registry is required")
	}
	return &Service{supervisor: sup, registry: registry}, nil
}

// HandleRequest drives one appointment request to completion and returns
// the concatenation of every message the conversation accumulated. Nothing
// below this boundary aborts the request once the loop has started: worker
// failures downgrade to apology messages and the loop continues.
func (s *Service) HandleRequest(ctx context.Context, patientID int, requestText string) (string, error) {
	st, err := convx.NewState(patientID, requestText)
	if err != nil {
		return "", err
	}

	for hop := 0; hop < maxLoopHops; hop++ {
		decision := s.supervisor.DecideNext(ctx, st)
		if decision.Next == contractx.RouteTerminate {
			break
		}

		worker, workerName := s.pick(decision.Next)
		if worker == nil {
			log.Error().Str("route", string(decision.Next)).Msg("no worker for route, terminating")
			break
		}

		msg, err := worker.Handle(ctx, contractx.WorkerRequest{
			PatientID: st.PatientID,
			Query:     st.LastUserQuery,
			History:   st.History,
		})
		if err != nil {
			log.Error().Err(err).Str("worker", workerName).Msg("worker failed, continuing with apology")
			msg = convx.Message{
				Role:    convx.RoleWorker,
				Worker:  workerName,
				Content: workerApology,
			}
		}
		st.Append(msg)
	}

	return st.Response(), nil
}

func (s *Service) pick(route contractx.RouteTarget) (contractx.Worker, string) {
	switch route {
	case contractx.RouteInformation:
		return s.registry.Information(), string(contractx.WorkerTypeInformation)
	case contractx.RouteBooking:
		return s.registry.Booking(), string(contractx.WorkerTypeBooking)
	default:
		return nil, ""
	}
}
