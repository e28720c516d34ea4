package main

import (
	"github.com/olekhov/mediapress/config"
	"github.com/olekhov/mediapress/models"
	"github.com/olekhov/mediapress/routes"
	"github.com/olekhov/mediapress/storage"
	"github.com/olekhov/mediapress/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg.LogLevel, cfg.LogPath, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Media{})

	store, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		utils.Sugar.Fatalf("init upload storage: %v", err)
	}

	r := routes.SetupRouter(db, store)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
