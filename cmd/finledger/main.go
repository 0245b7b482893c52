package main

import (
	"context"
	"os"

	"finledger/internal/amqp"
	"finledger/internal/backend"
	"finledger/internal/cli"
	"finledger/internal/ledger"
	"finledger/internal/users"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("finledger", os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize backend", "error", err)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("backend cleanup failed", "error", err)
			}
		}
	}()

	// Operation events are optional: without a broker the session runs
	// standalone and the statement worker simply has nothing to consume.
	var engineOpts []ledger.Option
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("failed to initialize AMQP client, continuing without export events", "error", err)
		} else {
			defer amqpClient.Close()
			engineOpts = append(engineOpts, ledger.WithEventPublisher(amqp.NewOperationPublisher(amqpClient)))
			logger.Info("operation events enabled",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	directory := users.NewDirectory(result.Store)
	session := cli.NewSession(os.Stdin, os.Stdout, directory, result.Store, engineOpts...)
	if err := session.Run(ctx); err != nil {
		logger.Error("session ended with error", "error", err)
		os.Exit(1)
	}
}
