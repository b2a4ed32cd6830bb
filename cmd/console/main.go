package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	project, err := fetchProject(client, cfg.APIBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load project: %v\n", err)
		os.Exit(1)
	}
	if len(project.Stages) == 0 {
		fmt.Fprintf(os.Stderr, "The project has no stages to play. Create or generate a stage first.\n")
		os.Exit(1)
	}

	if project.WorldSettings != nil && project.WorldSettings.Title != "" {
		fmt.Printf("Project: %s\n\n", project.WorldSettings.Title)
	}
	fmt.Println("Available Stages:")
	for i, stage := range project.Stages {
		fmt.Printf("  %d - %s (%d scenes)\n", i+1, stage.Title, len(stage.Scenes))
	}
	fmt.Print("\nSelect a stage by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(project.Stages) {
		fmt.Fprintf(os.Stderr, "Invalid selection\n")
		os.Exit(1)
	}

	stage := project.Stages[choice-1]
	view, err := startPlay(client, cfg.APIBaseURL, stage.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start play session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, view),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
