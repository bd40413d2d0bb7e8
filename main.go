package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pranaou2005/Wheelhub-backend/api/handlers"
	"github.com/pranaou2005/Wheelhub-backend/api/scheduler"
	"github.com/pranaou2005/Wheelhub-backend/config"
	"github.com/pranaou2005/Wheelhub-backend/databases"
	"github.com/pranaou2005/Wheelhub-backend/storage"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	//initialize database and router
	if err := a.Initialize(); err != nil {
		zap.S().Errorw("failed to initialize wheelhub-backend", "error", err)
		os.Exit(1)
	}

	if disk, ok := a.Store.(*storage.Disk); ok {
		db := a.Database()
		s := scheduler.NewScheduler(disk,
			databases.NewUserDatabase(db),
			databases.NewVehicleDatabase(db),
			databases.NewRCDatabase(db),
		)
		if err := s.Start(a.Config.JanitorSchedule); err != nil {
			zap.S().Errorw("failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer s.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("wheelhub-backend is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
		)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Errorw("server stopped", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		zap.S().Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.S().Warnw("failed to shut down cleanly", "error", err)
	}
	if err := a.Close(ctx); err != nil {
		zap.S().Warnw("failed to disconnect from database", "error", err)
	}
	_ = zap.S().Sync()
}
