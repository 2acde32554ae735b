package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	cli "github.com/autoapply/autoapply/cmd/autoapply"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := cli.SetupRootCmd().Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
