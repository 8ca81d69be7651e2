package types

import (
	"fmt"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

// TradeAnalysis holds aggregate statistics over a sequence of trade results.
// Rates and averages are NaN when their divisor is zero.
type TradeAnalysis struct {
	NumberOfTrades int
	Wins           int
	Losses         int
	WinRate        float64
	LoseRate       float64
	TotalGains     float64
	TotalLoss      float64
	AverageTrade   float64
	AverageWin     float64
	AverageLoss    float64
	MaxGain        float64
	MaxLoss        float64
	// GainLossRatio is AverageWin / -AverageLoss
	GainLossRatio float64
	// ProfitFactor is AverageWin*WinRate / (-AverageLoss*LoseRate)
	ProfitFactor float64
	// The standard deviations are None when there is not enough data to compute them.
	TradeSTD optional.Option[float64]
	WinSTD   optional.Option[float64]
	LossSTD  optional.Option[float64]
}

// AnalysisReport is the YAML form of a TradeAnalysis.
type AnalysisReport struct {
	NumberOfTrades int      `yaml:"number_of_trades"`
	Wins           int      `yaml:"wins"`
	Losses         int      `yaml:"losses"`
	WinRate        float64  `yaml:"win_rate"`
	LoseRate       float64  `yaml:"lose_rate"`
	TotalGains     float64  `yaml:"total_gains"`
	TotalLoss      float64  `yaml:"total_loss"`
	AverageTrade   float64  `yaml:"average_trade"`
	AverageWin     float64  `yaml:"average_win"`
	AverageLoss    float64  `yaml:"average_loss"`
	MaxGain        float64  `yaml:"max_gain"`
	MaxLoss        float64  `yaml:"max_loss"`
	GainLossRatio  float64  `yaml:"gain_loss_ratio"`
	ProfitFactor   float64  `yaml:"profit_factor"`
	TradeSTD       *float64 `yaml:"trade_std"`
	WinSTD         *float64 `yaml:"win_std"`
	LossSTD        *float64 `yaml:"loss_std"`
}

// Report converts the analysis into its YAML form.
func (a TradeAnalysis) Report() AnalysisReport {
	return AnalysisReport{
		NumberOfTrades: a.NumberOfTrades,
		Wins:           a.Wins,
		Losses:         a.Losses,
		WinRate:        a.WinRate,
		LoseRate:       a.LoseRate,
		TotalGains:     a.TotalGains,
		TotalLoss:      a.TotalLoss,
		AverageTrade:   a.AverageTrade,
		AverageWin:     a.AverageWin,
		AverageLoss:    a.AverageLoss,
		MaxGain:        a.MaxGain,
		MaxLoss:        a.MaxLoss,
		GainLossRatio:  a.GainLossRatio,
		ProfitFactor:   a.ProfitFactor,
		TradeSTD:       optionPointer(a.TradeSTD),
		WinSTD:         optionPointer(a.WinSTD),
		LossSTD:        optionPointer(a.LossSTD),
	}
}

func optionPointer(o optional.Option[float64]) *float64 {
	if o.IsNone() {
		return nil
	}

	v := o.Unwrap()

	return &v
}

// RunStats summarizes one portfolio run.
type RunStats struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Lists are the stock lists the run was restricted to, empty for every list.
	Lists           []string        `yaml:"lists" json:"lists"`
	SelectionMethod SelectionMethod `yaml:"selection_method" json:"selection_method"`
	StartCapital    float64         `yaml:"start_capital" json:"start_capital"`
	CashAvailable   float64         `yaml:"cash_available" json:"cash_available"`
	// FinalEquity is the total of the last timeline day, or the cash when no trade was taken.
	FinalEquity     float64 `yaml:"final_equity" json:"final_equity"`
	NumberOfStocks  int     `yaml:"number_of_stocks" json:"number_of_stocks"`
	NumberOfTrades  int     `yaml:"number_of_trades" json:"number_of_trades"`
	SignalsNotTaken int     `yaml:"signals_not_taken" json:"signals_not_taken"`
	TotalFees       float64 `yaml:"total_fees" json:"total_fees"`
	// Analysis is computed over the cash result of every historical trade.
	Analysis AnalysisReport `yaml:"analysis" json:"analysis"`
	// Warnings are the recoverable problems met while building the timeline.
	Warnings []string `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	// StorePath is the path of the document store the run read from and wrote to.
	StorePath string `yaml:"store_path" json:"store_path"`
}

func WriteRunStats(path string, stats []RunStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run stats to file: %w", err)
	}

	return nil
}
