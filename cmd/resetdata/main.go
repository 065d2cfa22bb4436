package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrprasath/paperhouse-backend/internal/impact"
	"github.com/jrprasath/paperhouse-backend/internal/logger"
	"github.com/jrprasath/paperhouse-backend/internal/utils"
)

// resetdata restores the impact counters to their configured defaults from
// the command line, recording the change in history like any other reset.
func main() {
	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dataDir := utils.GetEnv("DATA_DIR", "./data", log)
	store, err := impact.NewFileStore(dataDir)
	if err != nil {
		log.Fatal("Could not init impact store", "error", err)
	}
	ledger, err := impact.NewFileLedger(filepath.Join(dataDir, "history"))
	if err != nil {
		log.Fatal("Could not init impact history", "error", err)
	}
	backups, err := impact.NewFileBackups(filepath.Join(dataDir, "backups"))
	if err != nil {
		log.Fatal("Could not init impact backups", "error", err)
	}

	engine := impact.NewEngine(log, store, ledger, backups, impact.LoadDefaults(log))
	snap, err := engine.Reset(context.Background(), "cli")
	if err != nil {
		log.Fatal("Error resetting impact data", "error", err)
	}
	log.Info("Impact data reset successfully",
		"projects_completed", snap.ProjectsCompleted,
		"happy_clients", snap.HappyClients,
		"years_experience", snap.YearsExperience,
		"ongoing_projects", snap.OngoingProjects,
	)
}
