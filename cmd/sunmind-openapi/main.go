// Package main provides a CLI tool to generate the OpenAPI document for the sunmindd API.
// This binary uses the shared route definitions with stub handlers to produce an accurate
// OpenAPI document without requiring a backend, a state database or a telemetry socket.
//
// Usage:
//
//	go run ./cmd/sunmind-openapi > openapi.json
//	go run ./cmd/sunmind-openapi -yaml > openapi.yaml
//	go run ./cmd/sunmind-openapi -output openapi.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/sunmind/sunmind/internal/http/routes"
)

var (
	// version is set via ldflags at build time.
	version = "dev"
)

// generate renders the OpenAPI document for the local API.
func generate(asYAML bool, baseURL string) ([]byte, error) {
	// Create a minimal chi router; we won't actually serve requests
	router := chi.NewRouter()

	api := humachi.New(router, routes.NewHumaConfig(version, baseURL))

	// Register all routes with stub handlers
	routes.Register(api, routes.StubHandlers())

	doc := api.OpenAPI()
	if asYAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func main() {
	outputFile := flag.String("output", "", "Output file path (default: stdout)")
	outputYAML := flag.Bool("yaml", false, "Output as YAML instead of JSON")
	baseURL := flag.String("base-url", "", "Base URL for the API server")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	data, err := generate(*outputYAML, *baseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshaling OpenAPI document: %v\n", err)
		os.Exit(1)
	}

	// Output to file or stdout
	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing to file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "OpenAPI document written to %s\n", *outputFile)
	} else {
		fmt.Print(string(data))
	}
}
