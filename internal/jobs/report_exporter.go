package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/store"
)

// ReportExporterJob writes finished sessions out as JSONL report files on
// a cron schedule, then marks them exported so each session ships once.
type ReportExporterJob struct {
	store  *store.Store
	config *ExporterConfig
	cron   *cron.Cron
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule      string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir     string // Directory to store exported files
	ExportEnabled bool   // Whether to run exports
	BatchLimit    int    // Max sessions per run (0 = no limit)
}

// sessionReport is one JSONL line of the export file.
type sessionReport struct {
	Session  models.InterviewSession `json:"session"`
	Scores   []models.Score          `json:"scores"`
	RedFlags []models.RedFlag        `json:"red_flags"`
}

// NewReportExporterJob creates a new exporter job
func NewReportExporterJob(st *store.Store, config *ExporterConfig) *ReportExporterJob {
	return &ReportExporterJob{
		store:  st,
		config: config,
		cron:   cron.New(),
	}
}

// Start begins the scheduled export job
func (rej *ReportExporterJob) Start() error {
	if !rej.config.ExportEnabled {
		log.Println("Report export is disabled, skipping scheduler")
		return nil
	}

	log.Printf("Starting report exporter with schedule: %s", rej.config.Schedule)

	_, err := rej.cron.AddFunc(rej.config.Schedule, func() {
		if err := rej.RunExport(context.Background()); err != nil {
			log.Printf("Export job failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	rej.cron.Start()
	log.Println("Report exporter started successfully")

	return nil
}

// Stop stops the scheduled export job
func (rej *ReportExporterJob) Stop() {
	if rej.cron != nil {
		rej.cron.Stop()
		log.Println("Report exporter stopped")
	}
}

// RunExport performs a single export run
func (rej *ReportExporterJob) RunExport(ctx context.Context) error {
	sessions, err := rej.store.ListFinishedUnexported(ctx, rej.config.BatchLimit)
	if err != nil {
		return fmt.Errorf("failed to list unexported sessions: %w", err)
	}
	if len(sessions) == 0 {
		log.Println("No finished sessions awaiting export")
		return nil
	}

	log.Printf("Found %d finished sessions to export", len(sessions))

	if err := os.MkdirAll(rej.config.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("session_reports_%s.jsonl", timestamp)
	path := filepath.Join(rej.config.ExportDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	exported := make([]string, 0, len(sessions))
	for _, session := range sessions {
		scores, err := rej.store.ListScores(ctx, session.ID)
		if err != nil {
			log.Printf("Skipping session %s, failed to load scores: %v", session.ID, err)
			continue
		}
		redFlags, err := rej.store.ListFlags(ctx, session.ID)
		if err != nil {
			log.Printf("Skipping session %s, failed to load red flags: %v", session.ID, err)
			continue
		}
		if err := encoder.Encode(sessionReport{
			Session:  session,
			Scores:   scores,
			RedFlags: redFlags,
		}); err != nil {
			return fmt.Errorf("failed to write report line: %w", err)
		}
		exported = append(exported, session.ID)
	}

	if len(exported) == 0 {
		return nil
	}
	if err := rej.store.MarkReportsExported(ctx, exported); err != nil {
		return fmt.Errorf("failed to mark sessions exported: %w", err)
	}

	log.Printf("Exported %d session reports to %s", len(exported), path)
	return nil
}
