// cmd/tools/catalog/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"energy-agent/internal/common/config"
	"energy-agent/internal/common/database"
	"energy-agent/pkg/registry"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)

	catalogPath := validateCmd.String("path", "", "Path to a tool catalog file (default: built-in catalog)")

	exportPath := exportCmd.String("out", "configs/tool-catalog.json", "Where to write the built-in catalog")

	examplesPath := seedCmd.String("examples", "", "Path to an example questions file (default: built-in examples)")
	configPath := seedCmd.String("config", "", "Path to config file (default: configs/config.yaml)")
	index := seedCmd.String("index", "", "Target index (default: database.elasticsearch.index)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateCatalog(*catalogPath); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Catalog validation passed.")

	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := exportCatalog(*exportPath); err != nil {
			fmt.Printf("Error exporting catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog written to %s\n", *exportPath)

	case "seed":
		seedCmd.Parse(os.Args[2:])
		n, err := seedExamples(*configPath, *examplesPath, *index)
		if err != nil {
			fmt.Printf("Error seeding examples: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d example questions\n", n)

	case "help":
		fallthrough
	default:
		help()
	}
}

func validateCatalog(path string) error {
	c := registry.Default()
	if path != "" {
		var err error
		if c, err = registry.LoadCatalog(path); err != nil {
			return err
		}
	}
	return c.Validate()
}

func exportCatalog(path string) error {
	c := registry.Default()
	c.LastUpdated = time.Now().Format("2006-01-02")
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func seedExamples(configPath, examplesPath, index string) (int, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load config: %w", err)
	}
	if index == "" {
		index = cfg.Database.Elasticsearch.Index
	}

	examples := registry.DefaultExamples()
	if examplesPath != "" {
		if examples, err = registry.LoadExamples(examplesPath); err != nil {
			return 0, err
		}
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := es.EnsureIndex(ctx, index, registry.ExampleIndexMapping); err != nil {
		return 0, err
	}
	for _, ex := range examples {
		if err := es.IndexDocument(ctx, index, ex.ID, ex); err != nil {
			return 0, fmt.Errorf("example %s: %w", ex.ID, err)
		}
	}
	if err := es.Refresh(ctx, index); err != nil {
		return 0, err
	}
	return len(examples), nil
}

func help() {
	fmt.Println("Tool catalog utility")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  catalog validate [-path file]                 Validate a tool catalog")
	fmt.Println("  catalog export [-out file]                    Write the built-in catalog")
	fmt.Println("  catalog seed [-config file] [-examples file] [-index name]")
	fmt.Println("                                                Index example questions into Elasticsearch")
}
