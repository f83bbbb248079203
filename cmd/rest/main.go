package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"inspection-be/internal/bootstrap"
	"inspection-be/internal/config"
	"inspection-be/internal/model"
	"inspection-be/internal/server"
	"inspection-be/internal/tracer"
	"inspection-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.App)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if cfg.Database.AutoMigrate {
		if err := gormDB.AutoMigrate(model.All()...); err != nil {
			log.Panicf("AutoMigrate failed: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(ctx, gormDB, cfg)

	// 5. Start Background Services
	if err := container.Start(ctx); err != nil {
		log.Printf("Background services failed to start: %v", err)
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}

	cancel()
	container.Close()
}
