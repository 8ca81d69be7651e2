package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-flipper/internal/config"
)

const (
	schemaName       = "flipper-config.json"
	sampleConfigName = "flipper-config.yaml"
)

func main() {
	cfg := config.Default()

	schemaPath := filepath.Join("./config", schemaName)
	sampleConfigPath := filepath.Join("./config", sampleConfigName)

	if err := generateSchemaFile(cfg, schemaPath); err != nil {
		log.Fatalf("Failed to generate schema: %v", err)
	}

	// an existing sample may hold local edits
	if _, err := os.Stat(sampleConfigPath); os.IsNotExist(err) {
		if err := generateSampleConfig(cfg, sampleConfigPath, schemaName); err != nil {
			log.Fatalf("Failed to generate sample config: %v", err)
		}

		log.Printf("Sample config successfully generated at %s", sampleConfigPath)
	}

	log.Printf("Schema successfully generated at %s", schemaPath)
}

func generateSchemaFile(cfg config.Config, path string) error {
	schemaJSON, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

func generateSampleConfig(cfg config.Config, path string, schema string) error {
	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte("# yaml-language-server: $schema="+schema+"\n"), yamlBytes...)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, yamlBytes, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	return nil
}
