package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	llmx "github.com/pattarachai/medisched/agent/llm"
	orchestratorx "github.com/pattarachai/medisched/agent/orchestrator"
	supervisorx "github.com/pattarachai/medisched/agent/supervisor"
	toolx "github.com/pattarachai/medisched/agent/tool"
	workerx "github.com/pattarachai/medisched/agent/worker"
	configx "github.com/pattarachai/medisched/pkg/config"
	_ "github.com/pattarachai/medisched/pkg/logger/autoload"
	openrouterx "github.com/pattarachai/medisched/pkg/openrouter"
	redisx "github.com/pattarachai/medisched/pkg/redis"
	webhookx "github.com/pattarachai/medisched/pkg/webhook"
	schedulex "github.com/pattarachai/medisched/schedule"
)

type AppConfig struct {
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"`
	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"`
	SeedCSV      string `envconfig:"SEED_CSV" default:"data/availability.csv"`
	PostgresDSN  string `envconfig:"POSTGRES_DSN"`
}

type executeRequest struct {
	IDNumber int    `json:"id_number"`
	Message  string `json:"message"`
}

type executeResponse struct {
	Response string `json:"response"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")

	if client := openrouterx.NewClient(llmCfg.OpenRouterFor("")); client == nil {
		log.Fatal().Msg("openrouter client could not be initialized, check OPENROUTER_API_KEY")
	}

	store, cleanup, err := buildStore(ctx, *appCfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", appCfg.StoreBackend).Msg("failed to build schedule store")
	}
	defer cleanup()

	notifier, err := buildNotifier()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build booking notifier")
	}

	registry, err := workerx.NewRegistry(ctx, *llmCfg, store, notifier)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build worker registry")
	}

	sup, err := supervisorx.New(registry.Classifier())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build supervisor")
	}

	svc, err := orchestratorx.New(sup, registry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/execute", handleExecute(svc))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              appCfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", appCfg.HTTPAddr).Str("backend", appCfg.StoreBackend).Msg("appointment agent listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func handleExecute(svc *orchestratorx.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req executeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		response, err := svc.HandleRequest(r.Context(), req.IDNumber, req.Message)
		if err != nil {
			log.Warn().Err(err).Int("patient_id", req.IDNumber).Msg("rejected request")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(executeResponse{Response: response}); err != nil {
			log.Error().Err(err).Msg("failed to encode response")
		}
	}
}

// buildStore selects the ledger backend and seeds it from the CSV roster
// when one is configured. The returned cleanup closes backend resources.
func buildStore(ctx context.Context, cfg AppConfig) (schedulex.Store, func(), error) {
	slots, err := loadSeedSlots(cfg.SeedCSV)
	if err != nil {
		return nil, nil, err
	}
	if len(slots) > 0 {
		log.Info().Int("slots", len(slots)).Str("path", cfg.SeedCSV).Msg("loaded schedule ledger")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.StoreBackend)) {
	case "", "memory":
		store := schedulex.NewMemoryStore()
		if err := store.Seed(ctx, slots); err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case "redis":
		redisCfg := configx.MustNew[redisx.Config]("REDIS")
		client, err := redisCfg.New()
		if err != nil {
			return nil, nil, err
		}
		store, err := schedulex.NewRedisStore(client)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		if len(slots) > 0 {
			if err := store.Seed(ctx, slots); err != nil {
				client.Close()
				return nil, nil, err
			}
		}
		return store, func() { client.Close() }, nil

	case "postgres":
		store, err := schedulex.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Init(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		if len(slots) > 0 {
			if err := store.Seed(ctx, slots); err != nil {
				store.Close()
				return nil, nil, err
			}
		}
		return store, func() { store.Close() }, nil

	default:
		return nil, nil, errors.New("unknown store backend: " + cfg.StoreBackend)
	}
}

// loadSeedSlots tolerates a missing ledger file: the default path only
// exists when the repo's data directory ships alongside the binary.
func loadSeedSlots(path string) ([]schedulex.Slot, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	slots, err := schedulex.LoadCSVFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("path", path).Msg("seed ledger not found, starting with an empty schedule")
			return nil, nil
		}
		return nil, err
	}
	return slots, nil
}

func buildNotifier() (toolx.Notifier, error) {
	webhookCfg := configx.MustNew[webhookx.Config]("WEBHOOK")
	client, err := webhookx.NewClient(*webhookCfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Info().Msg("booking webhook disabled")
		return nil, nil
	}
	return client, nil
}
