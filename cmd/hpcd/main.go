package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/vidyalaya/hpc-service/internal/api/http"
	"github.com/vidyalaya/hpc-service/internal/config"
	"github.com/vidyalaya/hpc-service/internal/db"
	"github.com/vidyalaya/hpc-service/internal/export"
	"github.com/vidyalaya/hpc-service/internal/hpc"
	"github.com/vidyalaya/hpc-service/internal/notify"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := hpc.NewSQLStore(dbh)

	opts := []hpc.Option{
		hpc.WithDirectory(hpc.NewSQLDirectory(dbh)),
		hpc.WithNotifier(notify.NewLogNotifier()),
		hpc.WithStepDueDays(cfg.StepDueDays),
	}
	if cfg.ExportURL != "" {
		opts = append(opts, hpc.WithExporter(export.NewClient(cfg.ExportURL, time.Duration(cfg.ExportTimeoutSec)*time.Second)))
	}
	if cfg.AcademicYear != "" {
		opts = append(opts, hpc.WithAcademicYear(cfg.AcademicYear))
	}
	svc := hpc.NewService(store, opts...)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Evaluation intake
	r.Post("/evaluations", api.SubmitEvaluationHandler(svc))
	r.Get("/students/{studentID}/evaluations", api.ListEvaluationsHandler(svc))
	r.Put("/parameters/{parameterID}/assignments", api.PutAssignmentsHandler(svc))

	// Reports
	r.Post("/reports/compile", api.CompileReportHandler(svc))
	r.Post("/reports/compile/bulk", api.BulkCompileHandler(svc))
	r.Get("/reports/{reportID}", api.GetReportHandler(svc))
	r.Get("/students/{studentID}/reports", api.StudentReportsHandler(svc))
	r.Post("/reports/{reportID}/export", api.ExportReportHandler(svc))

	// Approval workflow
	r.Post("/reports/{reportID}/workflow", api.InitiateWorkflowHandler(svc))
	r.Post("/workflow/steps/{stepID}", api.ProcessApprovalHandler(svc))

	// Analytics
	r.Get("/students/{studentID}/analytics", api.StudentAnalyticsHandler(svc))

	log.Printf("hpcd listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
