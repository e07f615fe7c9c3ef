package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"snake-arena/server/internal/app"
	"snake-arena/server/internal/observability"
	"snake-arena/server/internal/telemetry"
)

func main() {
	tuningPath := flag.String("tuning", "", "path to a YAML tuning file")
	addr := flag.String("addr", "", "listen address, overrides the tuning file")
	pprof := flag.Bool("pprof", false, "expose /debug/pprof")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := app.Run(ctx, app.Config{
		Logger:        telemetry.WrapLogger(log.Default()),
		Observability: observability.Config{EnablePprofTrace: *pprof},
		TuningPath:    *tuningPath,
		Addr:          *addr,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}
}
