package main

// Run analyses for a list of topics without the HTTP surface:
//   go run ./cmd/batch -file topics.txt
//   echo "гравитация" | go run ./cmd/batch

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"insight-backend/internal/insight"
	"insight-backend/internal/llm/ollama"
	"insight-backend/internal/shared/config"
)

type batchResult struct {
	Topic  string                 `json:"topic"`
	Result *insight.InsightResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func main() {
	file := flag.String("file", "", "file with one topic per line (default: stdin)")
	language := flag.String("language", "", "response language code, e.g. ru or en")
	model := flag.String("model", "", "model identifier override")
	flag.Parse()

	cfg := config.Load()

	topics, err := readTopics(*file)
	if err != nil {
		log.Fatalf("read topics: %v", err)
	}
	if len(topics) == 0 {
		log.Fatalf("no topics to analyze")
	}

	timeout := time.Duration(cfg.AITimeoutMs) * time.Millisecond
	insightCfg := insight.Config{
		BaseURL:     cfg.OllamaBaseURL,
		APIKey:      cfg.OllamaAPIKey,
		Timeout:     timeout,
		UseMockData: cfg.AIUseMock,
	}
	var gen insight.Generator
	if !cfg.AIUseMock {
		gen = ollama.NewClient(cfg.OllamaBaseURL, cfg.OllamaAPIKey, timeout)
	}
	analyzer := insight.NewAnalyzer(gen, insightCfg)

	modelID := *model
	if modelID == "" {
		modelID = cfg.OllamaModel
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for _, topic := range topics {
		req := insight.AnalysisRequest{
			Topic:    topic,
			Language: *language,
			ModelParams: insight.ModelParams{
				Model: modelID,
			},
		}

		result, err := analyzer.Analyze(context.Background(), req)
		out := batchResult{Topic: topic}
		if err != nil {
			out.Error = err.Error()
		} else {
			out.Result = &result
		}
		if err := enc.Encode(out); err != nil {
			log.Fatalf("encode result: %v", err)
		}
	}
}

func readTopics(path string) ([]string, error) {
	in := os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}

	var topics []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		topics = append(topics, line)
	}
	return topics, scanner.Err()
}
