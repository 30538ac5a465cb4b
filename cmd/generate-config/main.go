package main

import (
	"fmt"
	"os"

	"github.com/debemdeboas/the-press/internal/config"
	"gopkg.in/yaml.v3"
)

const header = `# The Press configuration example
# Copy this file to config.yaml and customize as needed.
# Secrets are read from the environment only:
#   STORAGE_ACCESS_KEY_ID, STORAGE_ACCESS_KEY_SECRET, ED25519_PUBKEY, CLERK_API, REDIS_PASSWORD

`

func main() {
	cfg := config.Default()

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	output := header + string(yamlData)

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		fmt.Print(output)
		return
	}

	if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
