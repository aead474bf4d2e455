package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"img2text/internal/config"
	"img2text/internal/extract"
	"img2text/internal/logger"
	"img2text/internal/ocr/engine"
	"img2text/internal/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.Load()
	logger.Enable(cfg.Debug)

	recognizer, err := engine.New(ctx, engine.Config{
		Type:         cfg.Engine,
		OllamaURL:    cfg.OllamaURL,
		OllamaModel:  cfg.OllamaModel,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
	})
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer recognizer.Close()

	srv := server.NewServer(cfg, extract.NewExtractor(recognizer), recognizer.Name())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Printf("img2text is running with the %s engine", recognizer.Name())
	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	log.Println("shutting down...")
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
