// Command govtalk-testgw runs the gateway emulator as a standalone HTTP
// service, for exercising filing software without the real transaction
// engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openfiling/go-govtalk/internal/gateway"
)

func main() {
	var (
		addr    = flag.String("addr", ":8082", "listen address")
		pending = flag.Duration("pending", 4*time.Second, "how long submissions stay pending")
		poll    = flag.Duration("poll", 1*time.Second, "poll interval advertised to clients")
		verbose = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	gw := gateway.New(&gateway.Config{
		Endpoint:      fmt.Sprintf("http://localhost%s/", *addr),
		PendingWindow: *pending,
		PollInterval:  *poll,
	}, logger)

	server := &http.Server{
		Addr:         *addr,
		Handler:      gw.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("gateway emulator listening", "addr", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("gateway emulator stopped")
}
