package srvenv

import (
	"context"

	"github.com/go-lloyd/lloyd/internal/chart"
	"github.com/go-lloyd/lloyd/internal/cluster"
	"github.com/go-lloyd/lloyd/internal/database"
	"github.com/go-lloyd/lloyd/internal/export"
	"github.com/go-lloyd/lloyd/internal/pipeline"
	"github.com/go-lloyd/lloyd/internal/selector"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

type SrvEnv struct {
	database  *database.DB
	engine    *cluster.Engine
	selection *selector.Manager
	exporter  *export.Exporter
	renderer  *chart.Renderer
	pipeline  pipeline.ProvideFn
}

func (s *SrvEnv) ProvidePipeline() pipeline.ProvideFn {
	return s.pipeline
}

func (s *SrvEnv) Engine() *cluster.Engine {
	return s.engine
}

func (s *SrvEnv) Selection() *selector.Manager {
	return s.selection
}

func (s *SrvEnv) Exporter() *export.Exporter {
	return s.exporter
}

func (s *SrvEnv) Renderer() *chart.Renderer {
	return s.renderer
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

func WithPipeline(fn pipeline.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.pipeline = fn
		return s
	}
}

func WithEngine(engine *cluster.Engine) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.engine = engine
		return s
	}
}

func WithSelection(selection *selector.Manager) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.selection = selection
		return s
	}
}

func WithExporter(exporter *export.Exporter) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.exporter = exporter
		return s
	}
}

func WithRenderer(renderer *chart.Renderer) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.renderer = renderer
		return s
	}
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		return s
	}
}

func (s *SrvEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if s.database != nil {
		return s.database.Close(ctx)
	}
	return nil
}
