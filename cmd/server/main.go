package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ueba-service/internal/factory"
	"ueba-service/internal/handler"
	"ueba-service/internal/util"
)

func main() {
	f, err := factory.NewFactory()
	if err != nil {
		util.Fatal("failed to initialize factory", util.ErrorField(err))
	}
	defer f.Close()

	cfg := f.Config()
	pipeline := f.ServiceFactory().PipelineService()

	// Run one batch at startup so the API serves results immediately. A
	// failed initial run is not fatal; runs can be retriggered over HTTP.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := pipeline.Run(ctx); err != nil {
			util.Error("initial pipeline run failed", util.ErrorField(err))
		}
	}()

	pipelineHandler := handler.NewPipelineHandler(pipeline, util.Get())
	router := handler.NewRouter(pipelineHandler, func(r *http.Request) bool {
		return f.IsHealthy(r.Context())
	}, util.Get())

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Fatal("server failed to start", util.ErrorField(err))
		}
	}()

	util.Info("server started",
		util.String("environment", cfg.Environment),
		util.String("address", server.Addr),
		util.String("data_source", cfg.Data.Source),
	)

	waitForShutdown(f, server)
}

func waitForShutdown(f *factory.Factory, server *http.Server) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-signalChan
	util.Info("received shutdown signal", util.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		util.Error("failed to shutdown server gracefully", util.ErrorField(err))
	} else {
		util.Info("server shutdown completed")
	}
	f.Close()
}
