package selector

type Config struct {
	KMin              int `envconfig:"LLOYD_SELECTOR_K_MIN" default:"2"`
	KMax              int `envconfig:"LLOYD_SELECTOR_K_MAX" default:"15"`
	MaxConcurrentRuns int `envconfig:"LLOYD_SELECTOR_MAX_CONCURRENT_RUNS"`
}
