package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-lloyd/lloyd/internal/buildinfo"
	lloyd "github.com/go-lloyd/lloyd/internal/config"
	"github.com/go-lloyd/lloyd/internal/evaluate"
	"github.com/go-lloyd/lloyd/internal/logging"
	"github.com/go-lloyd/lloyd/internal/server"
	"github.com/go-lloyd/lloyd/internal/setup"
	"github.com/go-lloyd/lloyd/internal/shutdown"
	"github.com/go-lloyd/lloyd/internal/srvenv"
	"github.com/go-lloyd/lloyd/internal/sweep"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		"%s: %s, %s\n",
		buildinfo.Info.Name(),
		buildinfo.Info.Time(),
		buildinfo.Info.Tag(),
	)

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	if err := run(ctx, done); err != nil {
		logger.Fatal(err)
	}

	defer done()
}

func run(ctx context.Context, cancel func()) error {
	config := lloyd.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Close(ctx)

	if config.SvcModeType == lloyd.SvcModeTypeServe {
		return serve(ctx, cancel, &config, env)
	}

	provideFn := env.ProvidePipeline()
	if provideFn == nil {
		return fmt.Errorf("pipeline is not configured")
	}
	p, err := provideFn()
	if err != nil {
		return fmt.Errorf("pipeline provider function error: %w", err)
	}
	return p.Run(ctx)
}

func serve(ctx context.Context, cancel func(), config *lloyd.Config, env *srvenv.SrvEnv) error {
	srv, err := server.New(config.SrvAddr)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()

	evaluateHandler, err := evaluate.NewHandler(&config.Evaluate, env.Engine())
	if err != nil {
		return fmt.Errorf("evaluate.NewHandler: %w", err)
	}
	sweepHandler, err := sweep.NewHandler(&config.Sweep, env.Selection())
	if err != nil {
		return fmt.Errorf("sweep.NewHandler: %w", err)
	}

	mux.Handle("/evaluate", evaluateHandler)
	mux.Handle("/sweep", sweepHandler)
	mux.Handle("/health", server.HandleHealth(ctx))

	go func() {
		if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
			cancel()
		}
	}()

	<-ctx.Done()
	return nil
}
