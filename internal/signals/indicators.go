// Package signals provides technical indicator calculations over OHLC series.
//
// Series are chronological ascending; every function computes the value for
// the most recent bar. Each indicator reports insufficiency as an error so
// callers can tell "too little data" apart from a real failure.
package signals

import (
	"errors"
	"fmt"
	"math"

	"github.com/folioapp/folio/internal/models"
)

// ErrInsufficientData is returned when a series is shorter than an
// indicator's minimum length.
var ErrInsufficientData = errors.New("insufficient data")

// ErrSeriesMismatch is returned when high/low/close arrays differ in length.
var ErrSeriesMismatch = errors.New("high/low/close series length mismatch")

func insufficient(name string, need, got int) error {
	return fmt.Errorf("%s needs %d bars, got %d: %w", name, need, got, ErrInsufficientData)
}

// Closes extracts the close series from candles.
func Closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// SMA calculates the Simple Moving Average over the last period bars.
func SMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("invalid period %d: %w", period, ErrInsufficientData)
	}
	if len(closes) < period {
		return 0, insufficient("SMA", period, len(closes))
	}

	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period), nil
}

// emaSeries computes the running EMA, seeded with the SMA of the first
// period values. Entries before index period-1 are not valid.
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out[period-1] = seed

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

// EMA calculates the Exponential Moving Average for the most recent bar.
func EMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("invalid period %d: %w", period, ErrInsufficientData)
	}
	if len(closes) < period {
		return 0, insufficient("EMA", period, len(closes))
	}
	series := emaSeries(closes, period)
	return series[len(series)-1], nil
}

// RSI calculates the Wilder Relative Strength Index for the most recent bar.
// Needs period+1 closes for period price changes.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("invalid period %d: %w", period, ErrInsufficientData)
	}
	if len(closes) < period+1 {
		return 0, insufficient("RSI", period+1, len(closes))
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing over the remainder of the series
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), nil
}

// MACD calculates Moving Average Convergence Divergence for the most
// recent bar. The signal line is an EMA over the MACD line series when
// enough MACD points exist, otherwise the mean of the available points.
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) (models.MACDValue, error) {
	if fastPeriod <= 0 || slowPeriod <= fastPeriod || signalPeriod <= 0 {
		return models.MACDValue{}, fmt.Errorf("invalid MACD periods (%d,%d,%d): %w", fastPeriod, slowPeriod, signalPeriod, ErrInsufficientData)
	}
	if len(closes) < slowPeriod {
		return models.MACDValue{}, insufficient("MACD", slowPeriod, len(closes))
	}

	fastEMA := emaSeries(closes, fastPeriod)
	slowEMA := emaSeries(closes, slowPeriod)

	// MACD line is valid from the first index where the slow EMA is seeded
	macdLine := make([]float64, 0, len(closes)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(closes); i++ {
		macdLine = append(macdLine, fastEMA[i]-slowEMA[i])
	}

	macd := macdLine[len(macdLine)-1]

	var signal float64
	if len(macdLine) >= signalPeriod {
		sigSeries := emaSeries(macdLine, signalPeriod)
		signal = sigSeries[len(sigSeries)-1]
	} else {
		for _, v := range macdLine {
			signal += v
		}
		signal /= float64(len(macdLine))
	}

	return models.MACDValue{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}, nil
}

// Bollinger calculates Bollinger Bands for the most recent bar using the
// population standard deviation over the period.
func Bollinger(closes []float64, period int, stdDev float64) (models.BollingerBands, error) {
	if period <= 0 {
		return models.BollingerBands{}, fmt.Errorf("invalid period %d: %w", period, ErrInsufficientData)
	}
	if len(closes) < period {
		return models.BollingerBands{}, insufficient("Bollinger", period, len(closes))
	}

	window := closes[len(closes)-period:]
	middle := 0.0
	for _, c := range window {
		middle += c
	}
	middle /= float64(period)

	variance := 0.0
	for _, c := range window {
		d := c - middle
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))

	return models.BollingerBands{
		Upper:  middle + stdDev*sd,
		Middle: middle,
		Lower:  middle - stdDev*sd,
	}, nil
}

// Stochastic calculates the stochastic oscillator %K and %D for the most
// recent bar. %D is the SMA of the last signalPeriod %K values.
func Stochastic(highs, lows, closes []float64, period, signalPeriod int) (models.StochasticValue, error) {
	if len(highs) != len(closes) || len(lows) != len(closes) {
		return models.StochasticValue{}, ErrSeriesMismatch
	}
	if period <= 0 || signalPeriod <= 0 {
		return models.StochasticValue{}, fmt.Errorf("invalid stochastic periods (%d,%d): %w", period, signalPeriod, ErrInsufficientData)
	}
	need := period + signalPeriod - 1
	if len(closes) < need {
		return models.StochasticValue{}, insufficient("Stochastic", need, len(closes))
	}

	kValues := make([]float64, 0, signalPeriod)
	for j := len(closes) - signalPeriod; j < len(closes); j++ {
		lo, hi := math.MaxFloat64, -math.MaxFloat64
		for i := j - period + 1; i <= j; i++ {
			if highs[i] > hi {
				hi = highs[i]
			}
			if lows[i] < lo {
				lo = lows[i]
			}
		}
		k := 50.0 // flat window: price sits mid-range
		if hi > lo {
			k = (closes[j] - lo) / (hi - lo) * 100
		}
		kValues = append(kValues, k)
	}

	d := 0.0
	for _, k := range kValues {
		d += k
	}
	d /= float64(len(kValues))

	return models.StochasticValue{K: kValues[len(kValues)-1], D: d}, nil
}

// trueRange returns the true range for bar i (i >= 1).
func trueRange(highs, lows, closes []float64, i int) float64 {
	tr := highs[i] - lows[i]
	if v := math.Abs(highs[i] - closes[i-1]); v > tr {
		tr = v
	}
	if v := math.Abs(lows[i] - closes[i-1]); v > tr {
		tr = v
	}
	return tr
}

// ATR calculates the Wilder Average True Range for the most recent bar.
// Needs period+1 bars for period true ranges.
func ATR(highs, lows, closes []float64, period int) (float64, error) {
	if len(highs) != len(closes) || len(lows) != len(closes) {
		return 0, ErrSeriesMismatch
	}
	if period <= 0 {
		return 0, fmt.Errorf("invalid period %d: %w", period, ErrInsufficientData)
	}
	if len(closes) < period+1 {
		return 0, insufficient("ATR", period+1, len(closes))
	}

	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trueRange(highs, lows, closes, i)
	}
	atr /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		atr = (atr*float64(period-1) + trueRange(highs, lows, closes, i)) / float64(period)
	}
	return atr, nil
}

// ADX calculates the Wilder Average Directional Index for the most recent
// bar. Needs 2×period+1 bars: period for the first DI smoothing plus
// period DX values for the ADX average.
func ADX(highs, lows, closes []float64, period int) (float64, error) {
	if len(highs) != len(closes) || len(lows) != len(closes) {
		return 0, ErrSeriesMismatch
	}
	if period <= 0 {
		return 0, fmt.Errorf("invalid period %d: %w", period, ErrInsufficientData)
	}
	need := 2*period + 1
	if len(closes) < need {
		return 0, insufficient("ADX", need, len(closes))
	}

	var smTR, smPlusDM, smMinusDM float64
	var adx float64
	dxCount := 0

	for i := 1; i < len(closes); i++ {
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]

		plusDM, minusDM := 0.0, 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}
		tr := trueRange(highs, lows, closes, i)

		if i <= period {
			smTR += tr
			smPlusDM += plusDM
			smMinusDM += minusDM
			if i < period {
				continue
			}
		} else {
			// Wilder smoothing
			smTR = smTR - smTR/float64(period) + tr
			smPlusDM = smPlusDM - smPlusDM/float64(period) + plusDM
			smMinusDM = smMinusDM - smMinusDM/float64(period) + minusDM
		}

		if smTR == 0 {
			continue
		}
		plusDI := 100 * smPlusDM / smTR
		minusDI := 100 * smMinusDM / smTR
		diSum := plusDI + minusDI
		if diSum == 0 {
			continue
		}
		dx := 100 * math.Abs(plusDI-minusDI) / diSum

		dxCount++
		if dxCount <= period {
			adx += dx
			if dxCount == period {
				adx /= float64(period)
			}
		} else {
			adx = (adx*float64(period-1) + dx) / float64(period)
		}
	}

	if dxCount < period {
		return 0, insufficient("ADX", need, len(closes))
	}
	return adx, nil
}
