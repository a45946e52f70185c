// Package main provides the deck_agent CLI for template-driven deck generation.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deck_agent",
	Short: "Schema-driven slide deck generator",
	Long:  "deck_agent turns source documents into template-conformant slide decks: it clusters template layouts into field schemas, plans an outline, generates schema-validated content in parallel, renders the deck, and runs a holistic vision review with a bounded revision loop.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
