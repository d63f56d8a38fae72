package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/config"
	"github.com/DominicTanzillo/blessedmind/internal/serverapp"
)

func main() {
	cfg, err := config.Load("blessedmind_config.yml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	app, err := serverapp.New(serverapp.Options{
		Config: cfg,
		Logger: log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	if app.Refresh != nil {
		if err := app.Refresh.Start(); err != nil {
			log.Fatalf("start refresh scheduler: %v", err)
		}
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: app.HTTP}
	go func() {
		log.Printf("listening on http://localhost%s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("shutting down")
	if app.Refresh != nil {
		app.Refresh.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
