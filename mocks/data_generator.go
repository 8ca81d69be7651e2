package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-flipper/internal/types"
)

// DataGenerator generates daily stock histories for testing and benchmarking.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a stock history is generated.
type GeneratorConfig struct {
	// ID is the stock id (e.g., "ABB", "VOLV-B")
	ID string
	// Name is the display name, defaults to ID
	Name string
	// List is the market list the stock belongs to
	List string
	// StartDate is the first trading day. Weekends are skipped.
	StartDate time.Time
	// Count is the number of trading days to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.02 = 2% typical daily move)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per day
	VolumeBase float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		ID:           "TEST",
		List:         "Large Cap Stockholm",
		StartDate:    time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		Count:        500,
		InitialPrice: 100.0,
		Volatility:   0.02,
		Trend:        0.0,
		VolumeBase:   100000,
	}
}

// Generate creates a stock whose closes follow a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) types.Stock {
	name := config.Name
	if name == "" {
		name = config.ID
	}

	bars := make([]types.Bar, config.Count)
	currentPrice := config.InitialPrice
	currentDate := nextWeekday(config.StartDate.UTC())

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a standard normal sample
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + config.Volatility*z + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) * (1 + g.rng.Float64()*config.Volatility*0.5)
		low := math.Min(open, closePrice) * (1 - g.rng.Float64()*config.Volatility*0.5)

		volume := config.VolumeBase * (0.7 + g.rng.Float64()*0.6)

		bars[i] = types.Bar{
			Date:   currentDate,
			Open:   roundToDecimals(open, 2),
			High:   roundToDecimals(high, 2),
			Low:    roundToDecimals(low, 2),
			Close:  roundToDecimals(closePrice, 2),
			Volume: roundToDecimals(volume, 0),
		}

		currentPrice = closePrice
		currentDate = nextWeekday(currentDate.AddDate(0, 0, 1))
	}

	return types.Stock{
		ID:        config.ID,
		Name:      name,
		List:      config.List,
		PriceData: bars,
	}
}

// GenerateUniverse generates one stock per id with slightly varied price and volatility.
func (g *DataGenerator) GenerateUniverse(ids []string, baseConfig GeneratorConfig) []types.Stock {
	stocks := make([]types.Stock, 0, len(ids))

	for _, id := range ids {
		config := baseConfig
		config.ID = id
		config.Name = ""
		config.InitialPrice = baseConfig.InitialPrice * (0.5 + g.rng.Float64())
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		stocks = append(stocks, g.Generate(config))
	}

	return stocks
}

func nextWeekday(date time.Time) time.Time {
	for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		date = date.AddDate(0, 0, 1)
	}

	return date
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
