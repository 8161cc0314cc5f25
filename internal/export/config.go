package export

type Config struct {
	ResultDir    string `envconfig:"LLOYD_RESULT_DIR" default:"./result"`
	Separator    string `envconfig:"LLOYD_EXPORT_SEPARATOR" default:","`
	Quote        string `envconfig:"LLOYD_EXPORT_QUOTE" default:"~"`
	NullSentinel string `envconfig:"LLOYD_EXPORT_NULL" default:"None"`
	Precision    int    `envconfig:"LLOYD_EXPORT_PRECISION" default:"5"`
}
