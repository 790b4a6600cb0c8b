// Command classify_responses scores a set of survey answers against a
// persona catalog and prints the classification result as JSON.
//
// Usage:
//
//	classify_responses -catalog catalog.yaml -responses answers.json
//	classify_responses -catalog catalog.yaml -responses answers.json -preview
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/personakit/go-persona/internal/application"
	"github.com/personakit/go-persona/internal/domain"
)

// responseFile is the JSON input schema: a map from question ID to raw
// score, e.g. {"q1": 4, "q2": 2}.
type responseFile map[string]int

// previewOutput is the JSON shape printed in preview mode.
type previewOutput struct {
	PersonaScores   domain.PersonaScores   `json:"persona_scores"`
	ValueAxisScores domain.ValueAxisScores `json:"value_axis_scores"`
	Answered        int                    `json:"answered_questions"`
	Total           int                    `json:"total_questions"`
}

func main() {
	var (
		catalogPath   = flag.String("catalog", "", "Path to the catalog YAML file (required)")
		responsesPath = flag.String("responses", "", "Path to the responses JSON file (required)")
		preview       = flag.Bool("preview", false, "Print interim scores instead of requiring a complete answer set")
		outputPath    = flag.String("output", "", "Output file path (default stdout)")
	)
	flag.Parse()

	if *catalogPath == "" || *responsesPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*catalogPath, *responsesPath, *preview, *outputPath); err != nil {
		log.Fatalf("classify_responses: %v", err)
	}
}

func run(catalogPath, responsesPath string, preview bool, outputPath string) error {
	loader, err := application.NewCatalogLoader()
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}

	catalog, err := loader.LoadFromFile(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	responses, err := readResponses(responsesPath)
	if err != nil {
		return fmt.Errorf("failed to load responses: %w", err)
	}

	engine, err := application.NewEngine(catalog)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	ctx := context.Background()

	var output any
	if preview {
		personaScores, axisScores, err := engine.Preview(ctx, responses)
		if err != nil {
			return fmt.Errorf("preview failed: %w", err)
		}

		answered := 0
		for _, question := range catalog.Questions() {
			if responses.Answered(question.ID) {
				answered++
			}
		}
		output = previewOutput{
			PersonaScores:   personaScores,
			ValueAxisScores: axisScores,
			Answered:        answered,
			Total:           catalog.NumQuestions(),
		}
	} else {
		result, err := engine.FinalizeClassify(ctx, "", responses)
		if incomplete, ok := domain.IsIncomplete(err); ok {
			return fmt.Errorf("answer set incomplete, %d questions missing %v (use -preview for partial scores)",
				len(incomplete.Missing), incomplete.Missing)
		}
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}
		output = result
	}

	return writeOutput(output, outputPath)
}

func readResponses(path string) (domain.ResponseSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file responseFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	responses := domain.NewResponseSet()
	for id, raw := range file {
		qid := domain.QuestionID(id)
		responses[qid] = domain.UserResponse{QuestionID: qid, RawScore: raw}
	}
	return responses, nil
}

func writeOutput(output any, path string) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
