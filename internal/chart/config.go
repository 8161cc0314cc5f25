package chart

type Config struct {
	FileName string `envconfig:"LLOYD_CHART_FILE" default:"dann_index.html"`
}
