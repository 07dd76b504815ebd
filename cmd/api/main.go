package main

import (
	"context"
	"os"

	"github.com/collegeprep/organizer/internal/pkg/logger"
	"github.com/collegeprep/organizer/internal/server"
)

// @title College Prep Organizer API
// @version 1.0
// @description Checklist, documents and family accounts for families preparing for college

// @contact.name API Support
// @contact.email support@collegeprep.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token as "Bearer <token>"

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		// setup steps log their own details
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
