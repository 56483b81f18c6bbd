package main

import (
	"qa-dashboard/internal/config"
	"qa-dashboard/internal/dashboard"
	"qa-dashboard/internal/ingest"
	logger "qa-dashboard/internal/logging"
	"qa-dashboard/internal/models"
	"qa-dashboard/internal/router"

	"go.uber.org/zap"
)

func main() {
	// Initialize configuration
	if err := config.Init("."); err != nil {
		panic("failed to load configuration: " + err.Error())
	}
	conf := config.Current()

	// Initialize Logger
	log, err := logger.Init(".", conf.Logging)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	config.Watch(log)

	// Load the project catalog at startup
	catalog, err := models.LoadCatalog(conf.Dashboard.ProjectsFile)
	if err != nil {
		log.Fatal("Failed to load project catalog", zap.Error(err))
	}
	if _, ok := catalog.Lookup(conf.Dashboard.AutoloadProject); !ok {
		log.Warn("Autoload project is not in the catalog; no view will read the CSV source",
			zap.String("project", conf.Dashboard.AutoloadProject))
	}

	source := ingest.NewSource(conf.Dashboard.CSVSource, conf.Dashboard.FetchTimeout, conf.Dashboard.MaxUploadBytes)
	board := dashboard.NewBoard(log, catalog, source, conf.Dashboard.AutoloadProject)
	config.OnChange(func(c *config.Config) {
		board.Reconfigure(
			ingest.NewSource(c.Dashboard.CSVSource, c.Dashboard.FetchTimeout, c.Dashboard.MaxUploadBytes),
			c.Dashboard.AutoloadProject,
		)
	})

	r := router.Setup(log, board)

	port := ":" + conf.Server.Port
	log.Info("Server listening on http://localhost"+port, zap.String("csv_source", board.SourceName()))
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
