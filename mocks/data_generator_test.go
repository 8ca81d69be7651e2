package mocks

import (
	"testing"
	"time"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 100

	stock := gen.Generate(config)

	if stock.ID != config.ID || stock.Name != config.ID || stock.List != config.List {
		t.Errorf("unexpected stock summary %+v", stock.Summary())
	}

	if len(stock.PriceData) != 100 {
		t.Fatalf("expected 100 bars, got %d", len(stock.PriceData))
	}

	for i, bar := range stock.PriceData {
		if bar.Date.Weekday() == time.Saturday || bar.Date.Weekday() == time.Sunday {
			t.Errorf("bar %d falls on a weekend: %s", i, bar.Key())
		}

		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			t.Errorf("invalid OHLC values at index %d: O=%f H=%f L=%f C=%f",
				i, bar.Open, bar.High, bar.Low, bar.Close)
		}

		if bar.High < bar.Low {
			t.Errorf("High < Low at index %d: H=%f L=%f", i, bar.High, bar.Low)
		}

		if i > 0 && !bar.Date.After(stock.PriceData[i-1].Date) {
			t.Errorf("bars not in chronological order at index %d", i)
		}
	}
}

func TestDataGenerator_SkipsWeekendStart(t *testing.T) {
	config := DefaultConfig()
	config.Count = 2
	config.StartDate = time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC) // Saturday

	stock := NewDataGenerator(1).Generate(config)

	if got := stock.PriceData[0].Key(); got != "2021-01-04" {
		t.Errorf("expected first bar on 2021-01-04, got %s", got)
	}

	if got := stock.PriceData[1].Key(); got != "2021-01-05" {
		t.Errorf("expected second bar on 2021-01-05, got %s", got)
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	config := DefaultConfig()
	config.Count = 10

	first := NewDataGenerator(42).Generate(config)
	second := NewDataGenerator(42).Generate(config)

	for i := range first.PriceData {
		if first.PriceData[i].Close != second.PriceData[i].Close {
			t.Errorf("data not reproducible at index %d: got %f and %f",
				i, first.PriceData[i].Close, second.PriceData[i].Close)
		}
	}
}

func TestDataGenerator_GenerateUniverse(t *testing.T) {
	config := DefaultConfig()
	config.Count = 5

	stocks := NewDataGenerator(7).GenerateUniverse([]string{"ABB", "ERIC-B", "VOLV-B"}, config)

	if len(stocks) != 3 {
		t.Fatalf("expected 3 stocks, got %d", len(stocks))
	}

	for i, id := range []string{"ABB", "ERIC-B", "VOLV-B"} {
		if stocks[i].ID != id || stocks[i].Name != id {
			t.Errorf("expected stock %s, got %+v", id, stocks[i].Summary())
		}

		if len(stocks[i].PriceData) != 5 {
			t.Errorf("expected 5 bars for %s, got %d", id, len(stocks[i].PriceData))
		}
	}
}
