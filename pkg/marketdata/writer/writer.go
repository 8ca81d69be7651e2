package writer

import (
	"github.com/rxtech-lab/argo-flipper/internal/types"
)

// MarketDataWriter defines the interface for writing daily bars to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists one bar of stock. Only the summary fields of stock are stored.
	Write(stock types.Stock, bar types.Bar) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
