package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/stahnma/gh-search/internal/commands"
	"github.com/stahnma/gh-search/internal/config"
	lambdapkg "github.com/stahnma/gh-search/internal/lambda"
	"github.com/stahnma/gh-search/internal/logging"
)

var (
	GitSHA   string
	GitDirty string
)

func main() {
	cfg := config.FromEnvironment()
	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	app, err := commands.NewApp(cfg, GitSHA, GitDirty)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing application")
	}

	if os.Getenv("LAMBDA_TASK_ROOT") != "" {
		awslambda.Start(lambdapkg.NewHandler(app))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := app.NewRootCommand()
	runErr := rootCmd.ExecuteContext(ctx)
	if err := app.SaveCache(); err != nil {
		log.Error().Err(err).Msg("Error saving cache")
	}
	if err := app.WriteMetrics(); err != nil {
		log.Error().Err(err).Msg("Error writing metrics")
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}
