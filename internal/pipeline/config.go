package pipeline

type Config struct {
	InputFile     string `envconfig:"LLOYD_INPUT_FILE" default:"kmeans.csv"`
	MaxRunsStored int    `envconfig:"LLOYD_RUN_MAX_STORED" default:"100"`
}
