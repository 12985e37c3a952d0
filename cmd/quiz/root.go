package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"astramate/internal/config"
	applog "astramate/internal/logger"
)

const app = "quiz"

var (
	debug   bool
	jsonLog bool

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "quiz runs the AstraMate compatibility quiz in the terminal",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLog, "json", "j", false, "json format for logging")
}

// setup loads .env, the env config and a logger. Flags override the env log settings.
func setup() (*config.Config, *zap.Logger) {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := applog.New(applog.Options{Service: "astramate-quiz", JSON: jsonLog || cfg.LogJSON, Debug: debug || cfg.LogDebug})
	if err != nil {
		log.Fatalf("creating a logger: %v", err)
	}
	return cfg, logger
}
