package worker

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/pattarachai/medisched/agent/contract"
	llmx "github.com/pattarachai/medisched/agent/llm"
	promptx "github.com/pattarachai/medisched/agent/prompt"
	toolx "github.com/pattarachai/medisched/agent/tool"
	schedulex "github.com/pattarachai/medisched/schedule"
)

const (
	informationFallback = "I apologize, but I encountered an error checking availability. Please try rephrasing your query with the doctor's name or specialization and the desired date."
	bookingFallback     = "I apologize, but I couldn't complete that scheduling step. Please try again with the doctor's name, date, and time."
)

type registryImpl struct {
	classifier  contractx.Classifier
	information contractx.Worker
	booking     contractx.Worker
}

func (r *registryImpl) Classifier() contractx.Classifier {
	return r.classifier
}

func (r *registryImpl) Information() contractx.Worker {
	return r.information
}

func (r *registryImpl) Booking() contractx.Worker {
	return r.booking
}

// NewRegistry builds the classifier and both workers against one ledger
// store. Each agent gets its own chat model so per-worker model and
// temperature overrides apply.
func NewRegistry(
	ctx context.Context,
	cfg llmx.Config,
	store schedulex.Store,
	notifier toolx.Notifier,
) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("schedule store is required")
	}

	prompts := promptx.LoadPromptSet()

	supervisorModelCfg := cfg.OpenRouterFor(contractx.WorkerTypeSupervisor)
	supervisorModel, err := supervisorModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create supervisor model: %v", contractx.ErrModelInvoke, err)
	}
	informationModelCfg := cfg.OpenRouterFor(contractx.WorkerTypeInformation)
	informationModel, err := informationModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create information model: %v", contractx.ErrModelInvoke, err)
	}
	bookingModelCfg := cfg.OpenRouterFor(contractx.WorkerTypeBooking)
	bookingModel, err := bookingModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create booking model: %v", contractx.ErrModelInvoke, err)
	}

	classifier, err := newClassifier(ctx, supervisorModel, prompts.Supervisor)
	if err != nil {
		return nil, err
	}

	infoInfos, infoExec := toolx.BuildForWorker(contractx.WorkerTypeInformation, store, notifier)
	information, err := newServiceWorker(ctx, contractx.WorkerTypeInformation, informationModel, prompts.Information, infoInfos, infoExec, informationFallback)
	if err != nil {
		return nil, err
	}

	bookingInfos, bookingExec := toolx.BuildForWorker(contractx.WorkerTypeBooking, store, notifier)
	booking, err := newServiceWorker(ctx, contractx.WorkerTypeBooking, bookingModel, prompts.Booking, bookingInfos, bookingExec, bookingFallback)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		classifier:  classifier,
		information: information,
		booking:     booking,
	}, nil
}
