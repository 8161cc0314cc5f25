package cluster

type Config struct {
	MaxIterations int `envconfig:"LLOYD_ENGINE_MAX_ITERATIONS" default:"1000"`
}
