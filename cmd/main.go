package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/fairprice-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	a.Start()

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run() }()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigs:
		a.Log.Info("Shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			a.Log.Error("Server failed", "error", err)
			exitCode = 1
		}
	}
	a.Close()
	os.Exit(exitCode)
}
