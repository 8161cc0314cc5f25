package lloyd

import (
	"github.com/go-lloyd/lloyd/internal/chart"
	"github.com/go-lloyd/lloyd/internal/cluster"
	"github.com/go-lloyd/lloyd/internal/database"
	"github.com/go-lloyd/lloyd/internal/evaluate"
	"github.com/go-lloyd/lloyd/internal/export"
	"github.com/go-lloyd/lloyd/internal/pipeline"
	"github.com/go-lloyd/lloyd/internal/selector"
	"github.com/go-lloyd/lloyd/internal/setup"
	"github.com/go-lloyd/lloyd/internal/sweep"
)

var (
	_ setup.SvcModeConfigProvider  = (*Config)(nil)
	_ setup.EngineConfigProvider   = (*Config)(nil)
	_ setup.SelectorConfigProvider = (*Config)(nil)
	_ setup.ExportConfigProvider   = (*Config)(nil)
	_ setup.ChartConfigProvider    = (*Config)(nil)
	_ setup.DatabaseConfigProvider = (*Config)(nil)
	_ setup.PipelineConfigProvider = (*Config)(nil)
)

const (
	SvcModeTypeBatch = "BATCH"
	SvcModeTypeServe = "SERVE"
)

type Config struct {
	SvcModeType string `envconfig:"LLOYD_SVC_MODE" default:"BATCH"`
	SrvAddr     string `envconfig:"LLOYD_ADDR" default:":8787"`
	Engine      cluster.Config
	Selector    selector.Config
	Export      export.Config
	Chart       chart.Config
	Pipeline    pipeline.Config
	Database    database.Config
	Evaluate    evaluate.Config
	Sweep       sweep.Config
}

func (c Config) SvcMode() string {
	return c.SvcModeType
}

func (c Config) EngineConfig() *cluster.Config {
	return &c.Engine
}

func (c Config) SelectorConfig() *selector.Config {
	return &c.Selector
}

func (c Config) ExportConfig() *export.Config {
	return &c.Export
}

func (c Config) ChartConfig() *chart.Config {
	return &c.Chart
}

func (c Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c Config) PipelineConfig() *pipeline.Config {
	return &c.Pipeline
}
