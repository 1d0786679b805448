package main

import (
	"os"

	"github.com/spigell/interview-coach/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal; values then come from the environment.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
