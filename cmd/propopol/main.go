package main

import (
	"os"

	"github.com/wonny/propopol/cmd/propopol/commands"
)

// main is the entry point for the propopol CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/propopol [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
