package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"robocall-qa-go/internal/config"
	"robocall-qa-go/internal/logger"
	"robocall-qa-go/internal/processor"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.WithField("environment", cfg.Environment).
		WithField("llm_provider", cfg.LLM.Provider).
		WithField("mock_llm", cfg.LLM.Mock).
		Info("starting service")

	proc, closeLLM, err := processor.FromConfig(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to build processor")
	}
	defer closeLLM()

	s := &server{proc: proc, log: log}

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
