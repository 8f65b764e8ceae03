package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/JahirJmnz/marketpulse/internal/pipeline"
	"github.com/JahirJmnz/marketpulse/internal/report"
	"github.com/JahirJmnz/marketpulse/internal/store"
	"github.com/JahirJmnz/marketpulse/pkg/saptiva"
	"github.com/JahirJmnz/marketpulse/pkg/tavily"
)

// env holds the initialized store, clients, and manager shared by the serve
// and generate commands.
type env struct {
	Store   store.Store
	Manager *report.Manager
}

// Close waits for in-flight jobs and releases the store.
func (e *env) Close() {
	if e.Manager != nil {
		e.Manager.Wait()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store, API clients, pipeline, and job manager.
// Callers should defer env.Close().
func initEnv(ctx context.Context) (*env, error) {
	if cfg.Saptiva.Key == "" {
		return nil, eris.New("saptiva API key is required (MARKETPULSE_SAPTIVA_KEY)")
	}
	if cfg.Tavily.Key == "" {
		return nil, eris.New("tavily API key is required (MARKETPULSE_TAVILY_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	aiClient := saptiva.NewClient(cfg.Saptiva.Key,
		saptiva.WithBaseURL(cfg.Saptiva.BaseURL),
		saptiva.WithModels(cfg.Saptiva.FastModel, cfg.Saptiva.ReasoningModel, cfg.Saptiva.AdvancedModel),
	)
	searchClient := tavily.NewClient(cfg.Tavily.Key,
		tavily.WithBaseURL(cfg.Tavily.BaseURL),
		tavily.WithRateLimit(cfg.Tavily.RatePerSec),
	)

	p := pipeline.New(aiClient, searchClient, cfg.Pipeline)

	return &env{
		Store:   st,
		Manager: report.NewManager(st, p),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "marketpulse.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
