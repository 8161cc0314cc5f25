package sweep

import "time"

type Config struct {
	RequestTimeout  time.Duration `envconfig:"LLOYD_SWEEP_REQUEST_TIMEOUT" default:"60s"`
	MaxDataItemsLen int           `envconfig:"LLOYD_SWEEP_MAX_DATA_ITEMS_LEN" default:"10000"`
}
