package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/deck-composer/internal/catalog"
	"github.com/jonathan/deck-composer/internal/observability"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Cluster a layout catalog into field schemas and print statistics",
	Long:  "Loads a layout catalog JSON file, clusters structurally identical layouts into shared field schemas, and prints the clustering statistics. Use --schemas to dump the full schema definitions as JSON.",
	RunE:  runInspect,
}

var (
	inspectCatalog     string
	inspectDumpSchemas bool
)

func init() {
	inspectCmd.Flags().StringVarP(&inspectCatalog, "catalog", "c", "", "Path to the layout catalog JSON (required)")
	inspectCmd.Flags().BoolVar(&inspectDumpSchemas, "schemas", false, "Dump full schema definitions as JSON")

	if err := inspectCmd.MarkFlagRequired("catalog"); err != nil {
		panic(fmt.Sprintf("failed to mark catalog flag as required: %v", err))
	}

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, _ []string) error {
	cat, err := catalog.Load(inspectCatalog)
	if err != nil {
		return err
	}
	if cat.IsEmpty() {
		return fmt.Errorf("catalog %s contains no layouts", inspectCatalog)
	}

	cluster := catalog.Cluster(cat)
	printer := observability.NewPrinter(os.Stdout)
	printer.PrintCatalogStats(cluster.ComputeStats())

	for _, id := range cluster.SchemaIDs() {
		schema := cluster.Schemas[id]
		layouts := cluster.LayoutsBySchema[id]
		fmt.Printf("%s [%s/%s] %d layout(s): %v\n", id, schema.Category, schema.Complexity, len(layouts), layouts)
	}

	if inspectDumpSchemas {
		data, err := json.MarshalIndent(cluster.Schemas, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schemas: %w", err)
		}
		fmt.Println(string(data))
	}
	return nil
}
