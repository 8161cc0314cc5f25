package evaluate

import "time"

type Config struct {
	RequestTimeout  time.Duration `envconfig:"LLOYD_EVALUATE_REQUEST_TIMEOUT" default:"30s"`
	MaxDataItemsLen int           `envconfig:"LLOYD_EVALUATE_MAX_DATA_ITEMS_LEN" default:"10000"`
	MaxCandidates   int           `envconfig:"LLOYD_EVALUATE_MAX_CANDIDATES" default:"16"`
}
