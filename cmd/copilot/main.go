package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/cleared-dev/copilot/internal/commands"
)

func main() {
	// COPILOT_* settings may live in a .env file next to copilot.yaml.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
