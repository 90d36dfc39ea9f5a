package contract

import (
	"context"

	convx "github.com/pattarachai/medisched/agent/conversation"
)

// Classifier is the Reasoning Service's structured-decision capability:
// map a conversation to exactly one of the three route targets.
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (RouteDecision, error)
}

// Worker handles one category of request and returns exactly one message.
// Workers never abort the routing loop: internal tool and model failures
// come back as apologetic messages, not errors. An error return means the
// request itself was unusable.
type Worker interface {
	Handle(ctx context.Context, req WorkerRequest) (convx.Message, error)
}

// Registry provides the supervisor's classifier and the two workers.
type Registry interface {
	Classifier() Classifier
	Information() Worker
	Booking() Worker
}
