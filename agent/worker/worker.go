// Package worker wraps the Reasoning Service into the two specialist
// agents the supervisor can dispatch to, plus the supervisor's own
// classifier. Each worker runs a two-phase graph flow: a tool-planning
// call that may emit ledger tool invocations, then a structured finalize
// call that turns tool results into one user-facing message.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/pattarachai/medisched/agent/contract"
	convx "github.com/pattarachai/medisched/agent/conversation"
	toolx "github.com/pattarachai/medisched/agent/tool"
)

type workerReply struct {
	Message string `json:"message"`
}

// serviceWorker is the shared implementation behind the information and
// booking workers; they differ only in worker type, bound tools, and
// fallback wording.
type serviceWorker struct {
	workerType     contractx.WorkerType
	toolRunner     compose.Runnable[map[string]any, *schema.Message]
	finalizeRunner compose.Runnable[map[string]any, workerReply]
	execute        toolx.Executor
	allowedTools   map[string]struct{}
	fallback       string
}

func newServiceWorker(
	ctx context.Context,
	workerType contractx.WorkerType,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	infos []*schema.ToolInfo,
	execute toolx.Executor,
	fallback string,
) (*serviceWorker, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: worker=%s", contractx.ErrPromptMissing, workerType)
	}

	toolModel, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for worker=%s: %v", contractx.ErrModelInvoke, workerType, err)
	}
	toolRunner, err := compileToolPlanningGraph(ctx, toolModel, systemPrompt, string(workerType)+".tool_planning_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	finalizeRunner, err := compileStructuredGraph[workerReply](ctx, chatModel, systemPrompt, string(workerType)+".finalize_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	allowed := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		if info != nil && strings.TrimSpace(info.Name) != "" {
			allowed[info.Name] = struct{}{}
		}
	}

	return &serviceWorker{
		workerType:     workerType,
		toolRunner:     toolRunner,
		finalizeRunner: finalizeRunner,
		execute:        execute,
		allowedTools:   allowed,
		fallback:       fallback,
	}, nil
}

// Handle never returns a model or tool failure as an error: every internal
// failure downgrades to the worker's apologetic fallback message so the
// routing loop keeps control. An error return means the request itself was
// invalid.
func (w *serviceWorker) Handle(ctx context.Context, req contractx.WorkerRequest) (convx.Message, error) {
	if len(req.History) == 0 {
		return convx.Message{}, fmt.Errorf("%w: history is empty", contractx.ErrValidation)
	}

	payload := map[string]any{
		"patient_id":   req.PatientID,
		"query":        req.Query,
		"conversation": convx.Transcript(req.History),
	}

	planned, err := w.plan(ctx, payload)
	if err != nil {
		log.Warn().Err(err).Str("worker", string(w.workerType)).Msg("tool planning failed")
		return w.apology(), nil
	}

	// No tool calls means the model answered or asked for clarification
	// directly; pass that through untouched.
	if len(planned.ToolCalls) == 0 {
		content := strings.TrimSpace(planned.Content)
		if content == "" {
			log.Warn().Str("worker", string(w.workerType)).Msg("empty planning response")
			return w.apology(), nil
		}
		return w.message(content), nil
	}

	results, err := w.runTools(ctx, req.PatientID, planned.ToolCalls)
	if err != nil {
		log.Warn().Err(err).Str("worker", string(w.workerType)).Msg("tool execution failed")
		return w.apology(), nil
	}

	payload["tool_results"] = results
	reply, err := w.finalize(ctx, payload)
	if err != nil {
		log.Warn().Err(err).Str("worker", string(w.workerType)).Msg("finalize failed")
		return w.apology(), nil
	}
	return w.message(reply), nil
}

func (w *serviceWorker) plan(ctx context.Context, payload map[string]any) (*schema.Message, error) {
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal planning payload: %v", contractx.ErrValidation, err)
	}
	msg, err := w.toolRunner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: planning invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: nil planning response", contractx.ErrSchemaViolation)
	}
	return msg, nil
}

func (w *serviceWorker) runTools(ctx context.Context, patientID int, calls []schema.ToolCall) ([]toolx.Result, error) {
	results := make([]toolx.Result, 0, len(calls))
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}
		if _, ok := w.allowedTools[name]; !ok {
			return nil, fmt.Errorf("%w: tool=%s is not allowed for worker=%s", contractx.ErrSchemaViolation, name, w.workerType)
		}

		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
			}
		}
		// the patient identity comes from request state, never the model
		args["patient_id"] = patientID

		result, err := w.execute(ctx, name, args)
		if err != nil {
			return nil, fmt.Errorf("execute tool=%s: %w", name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (w *serviceWorker) finalize(ctx context.Context, payload map[string]any) (string, error) {
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal finalize payload: %v", contractx.ErrValidation, err)
	}
	out, err := w.finalizeRunner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return "", fmt.Errorf("%w: finalize invoke: %v", contractx.ErrModelInvoke, err)
	}
	message := strings.TrimSpace(out.Message)
	if message == "" {
		return "", fmt.Errorf("%w: finalize message is empty", contractx.ErrSchemaViolation)
	}
	return message, nil
}

func (w *serviceWorker) message(content string) convx.Message {
	return convx.Message{
		Role:    convx.RoleWorker,
		Worker:  string(w.workerType),
		Content: content,
	}
}

func (w *serviceWorker) apology() convx.Message {
	return w.message(w.fallback)
}
