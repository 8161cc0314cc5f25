// Package setup reads the environment and assembles the service
// dependencies into a SrvEnv. Every component is configured through an
// interface the config struct may or may not implement, so partial
// configs build partial environments.
package setup

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/go-lloyd/lloyd/internal/chart"
	"github.com/go-lloyd/lloyd/internal/cluster"
	"github.com/go-lloyd/lloyd/internal/database"
	"github.com/go-lloyd/lloyd/internal/export"
	"github.com/go-lloyd/lloyd/internal/logging"
	"github.com/go-lloyd/lloyd/internal/pipeline"
	runDb "github.com/go-lloyd/lloyd/internal/run/database"
	"github.com/go-lloyd/lloyd/internal/selector"
	"github.com/go-lloyd/lloyd/internal/srvenv"
)

const (
	SvcModeBatch string = "BATCH"
	SvcModeServe string = "SERVE"
)

type SvcModeConfigProvider interface {
	SvcMode() string
}

type EngineConfigProvider interface {
	EngineConfig() *cluster.Config
}

type SelectorConfigProvider interface {
	SelectorConfig() *selector.Config
}

type ExportConfigProvider interface {
	ExportConfig() *export.Config
}

type ChartConfigProvider interface {
	ChartConfig() *chart.Config
}

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type PipelineConfigProvider interface {
	PipelineConfig() *pipeline.Config
}

func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var (
		db        *database.DB
		exporter  *export.Exporter
		renderer  *chart.Renderer
		engine    *cluster.Engine
		selection *selector.Manager
	)
	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("Configuring db")
		dbFromEnv, err := database.NewFromEnv(ctx, dbConfigProvider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %v", err)
		}
		db = dbFromEnv
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
	}

	if exportConfigProvider, ok := config.(ExportConfigProvider); ok {
		logger.Info("Configuring exporter")
		exporter = ProvideExporterFor(exportConfigProvider.ExportConfig())
		serverEnvOpts = append(serverEnvOpts, srvenv.WithExporter(exporter))
	}

	if chartConfigProvider, ok := config.(ChartConfigProvider); ok {
		logger.Info("Configuring chart renderer")
		renderer = chart.New(chart.WithFileName(chartConfigProvider.ChartConfig().FileName))
		serverEnvOpts = append(serverEnvOpts, srvenv.WithRenderer(renderer))
	}

	if engineConfigProvider, ok := config.(EngineConfigProvider); ok {
		logger.Info("Configuring engine")
		engineOpts := []cluster.Option{
			cluster.WithMaxIterations(engineConfigProvider.EngineConfig().MaxIterations),
		}
		if exporter != nil {
			engineOpts = append(engineOpts, cluster.WithStateExporter(exporter))
		}
		engine = cluster.New(engineOpts...)
		serverEnvOpts = append(serverEnvOpts, srvenv.WithEngine(engine))
	}

	if selectorConfigProvider, ok := config.(SelectorConfigProvider); ok {
		logger.Info("Configuring selector")
		if engine == nil {
			return nil, fmt.Errorf("unable to configure selector without an engine config")
		}
		cfg := selectorConfigProvider.SelectorConfig()
		selectorOpts := []selector.Option{selector.WithKRange(cfg.KMin, cfg.KMax)}
		if cfg.MaxConcurrentRuns > 0 {
			selectorOpts = append(selectorOpts, selector.WithMaxConcurrentRuns(cfg.MaxConcurrentRuns))
		}
		m, err := selector.New(engine, selectorOpts...)
		if err != nil {
			return nil, fmt.Errorf("unable create selector instance: %v", err)
		}
		selection = m
		serverEnvOpts = append(serverEnvOpts, srvenv.WithSelection(selection))
	}

	if pipelineConfigProvider, ok := config.(PipelineConfigProvider); ok {
		logger.Info("Configuring pipeline")
		provideFn, err := ProvidePipelineFor(pipelineConfigProvider, selection, exporter, renderer, db)
		if err != nil {
			return nil, fmt.Errorf("unable create pipeline provide function: %v", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithPipeline(provideFn))
	}

	return srvenv.New(serverEnvOpts...), nil
}

func ProvideExporterFor(cfg *export.Config) *export.Exporter {
	opts := []export.Option{
		export.WithResultDir(cfg.ResultDir),
		export.WithNullSentinel(cfg.NullSentinel),
		export.WithPrecision(cfg.Precision),
	}
	if r := firstRune(cfg.Separator); r != 0 {
		opts = append(opts, export.WithSeparator(r))
	}
	if r := firstRune(cfg.Quote); r != 0 {
		opts = append(opts, export.WithQuote(r))
	}
	return export.New(opts...)
}

func ProvidePipelineFor(
	provider PipelineConfigProvider,
	selection *selector.Manager,
	exporter *export.Exporter,
	renderer *chart.Renderer,
	db *database.DB,
) (pipeline.ProvideFn, error) {
	if selection == nil || exporter == nil {
		return nil, fmt.Errorf("pipeline requires selector and export configs")
	}
	cfg := provider.PipelineConfig()
	var history *runDb.DB
	if db != nil {
		history = runDb.New(db)
	}
	return func() (pipeline.Manager, error) {
		return pipeline.New(
			selection,
			exporter,
			renderer,
			history,
			pipeline.WithInputFile(cfg.InputFile),
			pipeline.WithMaxRunsStored(cfg.MaxRunsStored),
		)
	}, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
