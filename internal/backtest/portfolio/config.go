package portfolio

import "github.com/rxtech-lab/argo-flipper/internal/types"

// DefaultWorkerLimit bounds concurrent price fetches while building the timeline.
const DefaultWorkerLimit = 10

type Config struct {
	StartCapital      float64               `yaml:"start_capital" json:"start_capital" jsonschema:"title=Start Capital,default=100000" validate:"gt=0"`
	MaxNumberOfStocks int                   `yaml:"max_number_of_stocks" json:"max_number_of_stocks" jsonschema:"title=Max Number Of Stocks,default=20" validate:"gt=0"`
	SelectionMethod   types.SelectionMethod `yaml:"selection_method" json:"selection_method" jsonschema:"title=Selection Method,default=random" validate:"oneof=random best worst none"`
	// WorkerLimit is the number of stocks fetched concurrently for the timeline
	WorkerLimit int `yaml:"worker_limit" json:"worker_limit" jsonschema:"title=Worker Limit,default=10" validate:"gte=0"`
	// Seed seeds the random selection method. Zero seeds from the clock.
	Seed int64 `yaml:"seed" json:"seed" jsonschema:"title=Random Seed"`
}

func DefaultConfig() Config {
	return Config{
		StartCapital:      100000,
		MaxNumberOfStocks: 20,
		SelectionMethod:   types.SelectionRandom,
		WorkerLimit:       DefaultWorkerLimit,
		Seed:              0,
	}
}
