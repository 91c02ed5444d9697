package main

import (
	"github.com/joho/godotenv"

	"github.com/zervakisai/hydraulic-maintenance/cmd"
)

func main() {
	// .env is optional; system environment is used either way.
	_ = godotenv.Load()
	cmd.Execute()
}
