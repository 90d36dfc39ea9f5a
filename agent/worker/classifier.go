package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/pattarachai/medisched/agent/contract"
	convx "github.com/pattarachai/medisched/agent/conversation"
)

type classifierImpl struct {
	runner compose.Runnable[map[string]any, routeLLMOutput]
}

type routeLLMOutput struct {
	Next      string `json:"next"`
	Reasoning string `json:"reasoning"`
}

func newClassifier(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*classifierImpl, error) {
	runner, err := compileStructuredGraph[routeLLMOutput](ctx, chatModel, systemPrompt, "supervisor.route_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile route graph: %v", contractx.ErrModelInvoke, err)
	}
	return &classifierImpl{runner: runner}, nil
}

func (c *classifierImpl) Classify(ctx context.Context, req contractx.ClassifyRequest) (contractx.RouteDecision, error) {
	if len(req.History) == 0 {
		return contractx.RouteDecision{}, fmt.Errorf("%w: history is empty", contractx.ErrValidation)
	}

	payload := map[string]any{
		"patient_id":   req.PatientID,
		"conversation": convx.Transcript(req.History),
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.RouteDecision{}, fmt.Errorf("%w: marshal route payload: %v", contractx.ErrValidation, err)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.RouteDecision{}, fmt.Errorf("%w: route invoke: %v", contractx.ErrModelInvoke, err)
	}

	target, err := contractx.ParseRouteTarget(out.Next)
	if err != nil {
		return contractx.RouteDecision{}, err
	}

	return contractx.RouteDecision{
		Next:      target,
		Rationale: strings.TrimSpace(out.Reasoning),
	}, nil
}
