package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"compliance_summarizer/pkg/core/config"
	"compliance_summarizer/pkg/core/pipeline"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	filePath := flag.String("file", "", "Path to the PDF financial statement")
	title := flag.String("title", "", "Document title for the summary (defaults to the file name)")
	configPath := flag.String("config", "", "Optional YAML config file")
	outPath := flag.String("out", "", "Write the JSON summary to this file instead of stdout")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: summarize -file statement.pdf [-title \"...\"] [-config config.yaml] [-out summary.json]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	pdfBytes, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Error: cannot read %s: %v", *filePath, err)
	}

	docTitle := *title
	if docTitle == "" {
		docTitle = *filePath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summarizer := pipeline.NewSummarizer(cfg)
	summarizer.ValidateCredentials(ctx)

	summary, err := summarizer.SummarizeDocument(ctx, pdfBytes, docTitle)
	if err != nil {
		log.Fatalf("Error: summarization failed: %v", err)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatalf("Error: encode summary: %v", err)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, append(out, '\n'), 0o644); err != nil {
			log.Fatalf("Error: write %s: %v", *outPath, err)
		}
		fmt.Printf("Summary written to %s\n", *outPath)
		return
	}
	fmt.Println(string(out))
}
