package analyzer

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

// Analyze computes win/loss statistics over a sequence of trade results.
// A result greater than zero is a win, anything else is a loss.
func Analyze(values []float64) (types.TradeAnalysis, error) {
	for i, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return types.TradeAnalysis{}, errors.Newf(errors.ErrCodeInvalidInput, "value at index %d is not a finite number", i)
		}
	}

	var (
		analysis types.TradeAnalysis
		wins     []float64
		losses   []float64
	)

	for _, value := range values {
		analysis.NumberOfTrades++

		if value > 0 {
			analysis.Wins++
			analysis.TotalGains += value
			analysis.MaxGain = math.Max(analysis.MaxGain, value)
			wins = append(wins, value)

			continue
		}

		analysis.Losses++
		analysis.TotalLoss += value
		analysis.MaxLoss = math.Min(analysis.MaxLoss, value)
		losses = append(losses, value)
	}

	trades := float64(analysis.NumberOfTrades)

	analysis.WinRate = ratio(float64(analysis.Wins), trades)
	analysis.LoseRate = ratio(float64(analysis.Losses), trades)
	analysis.AverageTrade = ratio(analysis.TotalGains+analysis.TotalLoss, trades)
	analysis.AverageWin = ratio(analysis.TotalGains, float64(analysis.Wins))
	analysis.AverageLoss = ratio(analysis.TotalLoss, float64(analysis.Losses))
	analysis.GainLossRatio = analysis.AverageWin / -analysis.AverageLoss
	analysis.ProfitFactor = (analysis.AverageWin * analysis.WinRate) / (-analysis.AverageLoss * analysis.LoseRate)

	analysis.TradeSTD = standardDeviation(append(append([]float64{}, wins...), losses...), analysis.AverageTrade)
	analysis.WinSTD = standardDeviation(wins, analysis.AverageWin)
	analysis.LossSTD = standardDeviation(losses, analysis.AverageLoss)

	return analysis, nil
}

// ratio divides a by b and returns NaN when b is zero.
func ratio(a float64, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}

	return a / b
}

// standardDeviation is the sample standard deviation of data around average.
// It is None for fewer than two values or a zero or NaN average.
func standardDeviation(data []float64, average float64) optional.Option[float64] {
	if len(data) < 2 || average == 0 || math.IsNaN(average) {
		return optional.None[float64]()
	}

	sum := 0.0
	for _, value := range data {
		sum += math.Pow(value-average, 2)
	}

	return optional.Some(math.Sqrt(sum / float64(len(data)-1)))
}
