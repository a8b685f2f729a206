package main

import (
	"context"
	"log"

	"riskrouter/internal/config"
	httpapi "riskrouter/internal/http"
	"riskrouter/internal/infra/agentmem"
	"riskrouter/internal/infra/intake"
	"riskrouter/internal/infra/notify"
	"riskrouter/internal/infra/priorityqueue"
	"riskrouter/internal/infra/snapshots"
	"riskrouter/internal/infra/suppression"
	"riskrouter/internal/infra/sweep"
	"riskrouter/internal/usecase"
)

func main() {
	cfg := config.FromEnv()
	logger := log.Default()

	suppressor := suppression.NewMemory(nil)
	if cfg.RedisAddr != "" {
		var err error
		suppressor, err = suppression.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
		if err != nil {
			log.Fatalf("failed to init redis suppression: %v", err)
		}
	}

	registry := agentmem.New()
	if cfg.AgentsFile != "" {
		roster, err := config.LoadAgents(cfg.AgentsFile)
		if err != nil {
			log.Fatalf("failed to load agents: %v", err)
		}
		registry.Seed(roster)
		logger.Printf("loaded %d agents from %s", len(roster), cfg.AgentsFile)
	}

	scheduler := usecase.New(
		priorityqueue.New(nil),
		registry,
		suppressor,
		notify.NewLog(logger),
		snapshots.NewMemory(nil),
		logger,
		nil,
	)

	if cfg.RulesFile != "" {
		ruleSet, err := config.LoadRules(cfg.RulesFile)
		if err != nil {
			log.Fatalf("failed to load rules: %v", err)
		}
		scheduler.SetRules(ruleSet)
		logger.Printf("loaded %d rules from %s", len(ruleSet), cfg.RulesFile)
	}

	runner, err := sweep.Start(cfg.SweepSchedule, scheduler, logger)
	if err != nil {
		log.Fatalf("failed to start sweep: %v", err)
	}
	defer runner.Stop()

	if len(cfg.KafkaBrokers) > 0 {
		consumer := intake.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, scheduler, logger)
		defer consumer.Close()
		go func() {
			if err := consumer.Run(context.Background()); err != nil {
				logger.Printf("kafka intake stopped: %v", err)
			}
		}()
	}

	srv := httpapi.NewServer(cfg, scheduler)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
