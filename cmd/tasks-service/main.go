package main

import (
	"fmt"
	"os"

	"github.com/haulbridge/freight-tasks/internal/auth"
	"github.com/haulbridge/freight-tasks/internal/config"
	"github.com/haulbridge/freight-tasks/internal/db"
	"github.com/haulbridge/freight-tasks/internal/export"
	httphandler "github.com/haulbridge/freight-tasks/internal/http"
	"github.com/haulbridge/freight-tasks/internal/http/middleware"
	"github.com/haulbridge/freight-tasks/internal/logger"
	"github.com/haulbridge/freight-tasks/internal/repository"
	"github.com/haulbridge/freight-tasks/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	taskRepo := repository.NewTaskRepository(database)
	bidRepo := repository.NewBidRepository(database)
	userRepo := repository.NewUserRepository(database)

	taskService := service.NewTaskService(taskRepo, userRepo)
	bidService := service.NewBidService(bidRepo, taskRepo)
	assignmentService := service.NewAssignmentService(bidRepo, taskRepo, userRepo)
	exportService := service.NewExportService(taskRepo, bidRepo, export.NewExcelGenerator(), export.NewPDFGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(taskService, bidService, assignmentService, exportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting tasks service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
