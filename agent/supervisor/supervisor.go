// Package supervisor implements the routing state machine: each hop it
// classifies the conversation so far, picks exactly one worker or
// terminates, and enforces the hop budget that guarantees the loop ends
// no matter what the classifier does.
package supervisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/pattarachai/medisched/agent/contract"
	convx "github.com/pattarachai/medisched/agent/conversation"
)

// HopBudget is the fixed hop ceiling. The counter is incremented before
// classification, so hops 1 through HopBudget-1 may dispatch and hop
// HopBudget terminates unconditionally.
const HopBudget = 5

const (
	budgetExhaustedRationale = "hop budget exhausted"
	classificationApology    = "I'm sorry, I couldn't process your request right now. Please try again."
)

type Supervisor struct {
	classifier contractx.Classifier
	budget     int
}

type Option func(*Supervisor)

// WithHopBudget overrides the hop ceiling, for tests.
func WithHopBudget(budget int) Option {
	return func(s *Supervisor) {
		if budget > 0 {
			s.budget = budget
		}
	}
}

func New(classifier contractx.Classifier, opts ...Option) (*Supervisor, error) {
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	s := &Supervisor{
		classifier: classifier,
		budget:     HopBudget,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// DecideNext runs one supervisor hop. It increments the hop counter,
// terminates immediately once the budget is reached, and otherwise asks the
// classifier for the next route. Classification failure maps to Terminate
// rather than an error: a broken classifier must not deadlock the loop.
func (s *Supervisor) DecideNext(ctx context.Context, st *convx.State) contractx.RouteDecision {
	hop := st.NextHop()
	if hop >= s.budget {
		log.Warn().Int("hop", hop).Int("patient_id", st.PatientID).Msg("hop budget exhausted, forcing terminate")
		return s.commit(st, contractx.RouteDecision{
			Next:      contractx.RouteTerminate,
			Rationale: budgetExhaustedRationale,
		})
	}

	firstHop := len(st.History) == 1
	if firstHop {
		st.CaptureQuery()
	}

	decision, err := s.classifier.Classify(ctx, contractx.ClassifyRequest{
		PatientID: st.PatientID,
		History:   st.History,
	})
	if err != nil {
		log.Error().Err(err).Int("hop", hop).Msg("classification failed, terminating request")
		st.Append(convx.Message{Role: convx.RoleAssistant, Content: classificationApology})
		return s.commit(st, contractx.RouteDecision{
			Next:      contractx.RouteTerminate,
			Rationale: fmt.Sprintf("classification failed: %v", err),
		})
	}

	// Downstream workers see a trimmed history; re-assert whose request
	// this is once, so the patient id survives into their prompts.
	if firstHop {
		st.Append(convx.Message{
			Role:    convx.RoleUser,
			Content: fmt.Sprintf("user's identification number is %d", st.PatientID),
		})
	}

	log.Debug().
		Int("hop", hop).
		Str("next", string(decision.Next)).
		Str("rationale", decision.Rationale).
		Msg("route decided")

	return s.commit(st, decision)
}

func (s *Supervisor) commit(st *convx.State, decision contractx.RouteDecision) contractx.RouteDecision {
	st.PendingRoute = string(decision.Next)
	st.Rationale = decision.Rationale
	return decision
}
