package types

import "time"

// DateKeyLayout is the layout of the canonical day key used by signal maps and timelines.
const DateKeyLayout = "2006-01-02"

// Bar is one period of a price series.
type Bar struct {
	Date   time.Time `yaml:"date" json:"date"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`
}

// DateKey returns the canonical day key of t.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateKeyLayout)
}

// ParseDateKey parses a day key produced by DateKey.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(DateKeyLayout, key, time.UTC)
}

// Key returns the canonical day key of the bar.
func (b Bar) Key() string {
	return DateKey(b.Date)
}
