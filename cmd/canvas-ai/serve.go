package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"canvas-ai/internal/adapter/gateway"
	"canvas-ai/internal/adapter/store"
	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/logger"
	"canvas-ai/internal/infra/tracer"
	"canvas-ai/internal/usecase/eventbus"
	"canvas-ai/internal/usecase/prompt"
)

type serveCmd struct {
	Addr string `help:"Listen address, overrides server.addr."`
}

func (c *serveCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}

	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(context.Background())

	llmComponents, err := initLLM(cfg, logger.Component(log, "llm"))
	if err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	bus := eventbus.New(logger.Component(log, "eventbus"))
	defer bus.Close()

	var history domain.HistoryStore
	if cfg.History.Enabled {
		h, err := store.NewSQLiteHistoryStore(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		defer h.Close()
		history = h
	}

	svc, err := prompt.NewService(prompt.ServiceDeps{
		LLM:     llmComponents.DefaultLLM,
		Config:  cfg.Prompt,
		Logger:  logger.Component(log, "prompt"),
		Bus:     bus,
		History: history,
	})
	if err != nil {
		return fmt.Errorf("prompt service: %w", err)
	}

	srv, err := gateway.NewServer(gateway.Deps{
		Prompts: svc,
		History: history,
		Bus:     bus,
		Config:  cfg.Server,
		Version: version,
		Logger:  logger.Component(log, "gateway"),
	})
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	log.Info("canvas-ai starting",
		"version", version,
		"addr", cfg.Server.Addr,
		"provider", cfg.LLM.DefaultProvider,
		"providers", llmComponents.Registry.List(),
		"history", history != nil,
		"feed", cfg.Server.WSEnabled,
	)
	return srv.Start(ctx)
}
