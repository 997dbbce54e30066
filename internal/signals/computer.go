package signals

import (
	"errors"
	"time"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/models"
)

// Default indicator parameters.
const (
	DefaultRSIPeriod        = 14
	DefaultMACDFast         = 12
	DefaultMACDSlow         = 26
	DefaultMACDSignal       = 9
	DefaultBollingerPeriod  = 20
	DefaultBollingerStdDev  = 2.0
	DefaultStochasticPeriod = 14
	DefaultStochasticSignal = 3
	DefaultATRPeriod        = 14
	DefaultADXPeriod        = 14
)

// DefaultMAPeriods are the moving-average periods computed when the caller
// does not supply a set.
var DefaultMAPeriods = []int{20, 50, 200}

// ComputeOptions selects the moving-average periods to compute.
type ComputeOptions struct {
	SMAPeriods []int
	EMAPeriods []int
}

// Computer produces latest-bar indicator snapshots. Each indicator is
// isolated: insufficiency or failure in one leaves its field absent and
// never prevents the others from being computed.
type Computer struct {
	logger *common.Logger
	now    func() time.Time
}

// NewComputer creates an indicator computer.
func NewComputer(logger *common.Logger) *Computer {
	return &Computer{logger: logger, now: time.Now}
}

// Compute calculates all indicators for the most recent bar of the series.
// Never returns an error: a short or partially-malformed series yields a
// snapshot with the affected indicators absent.
func (c *Computer) Compute(candles []models.Candle, opts ComputeOptions) *models.TechnicalIndicators {
	ind := &models.TechnicalIndicators{
		ComputedAt: c.now(),
		Bars:       len(candles),
	}
	if len(candles) == 0 {
		ind.RSISignal = models.RSINeutral
		ind.MACDSignal = models.MACDNeutral
		ind.BollingerPosition = models.BandUnknown
		return ind
	}

	closes := Closes(candles)
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	hasOHLC := true
	for i, candle := range candles {
		highs[i] = candle.High
		lows[i] = candle.Low
		if candle.High == 0 && candle.Low == 0 {
			hasOHLC = false
		}
	}
	lastClose := closes[len(closes)-1]
	ind.LastClose = lastClose

	if rsi, err := c.guarded("rsi", func() (float64, error) {
		return RSI(closes, DefaultRSIPeriod)
	}); err == nil {
		ind.RSI = &rsi
	}

	if macd, err := c.guardedMACD(closes); err == nil {
		ind.MACD = &macd
	}

	if bands, err := c.guardedBollinger(closes); err == nil {
		ind.Bollinger = &bands
	}

	smaPeriods := opts.SMAPeriods
	if smaPeriods == nil {
		smaPeriods = DefaultMAPeriods
	}
	for _, period := range smaPeriods {
		p := period
		if v, err := c.guarded("sma", func() (float64, error) {
			return SMA(closes, p)
		}); err == nil {
			if ind.SMA == nil {
				ind.SMA = make(map[int]float64)
			}
			ind.SMA[p] = v
		}
	}

	emaPeriods := opts.EMAPeriods
	if emaPeriods == nil {
		emaPeriods = DefaultMAPeriods
	}
	for _, period := range emaPeriods {
		p := period
		if v, err := c.guarded("ema", func() (float64, error) {
			return EMA(closes, p)
		}); err == nil {
			if ind.EMA == nil {
				ind.EMA = make(map[int]float64)
			}
			ind.EMA[p] = v
		}
	}

	// OHLC-dependent indicators are skipped entirely when the series only
	// carries closes.
	if hasOHLC {
		if stoch, err := c.guardedStochastic(highs, lows, closes); err == nil {
			ind.Stochastic = &stoch
		}
		if atr, err := c.guarded("atr", func() (float64, error) {
			return ATR(highs, lows, closes, DefaultATRPeriod)
		}); err == nil {
			ind.ATR = &atr
		}
		if adx, err := c.guarded("adx", func() (float64, error) {
			return ADX(highs, lows, closes, DefaultADXPeriod)
		}); err == nil {
			ind.ADX = &adx
		}
	}

	ind.RSISignal = ClassifyRSI(ind.RSI)
	ind.MACDSignal = ClassifyMACD(ind.MACD)
	ind.BollingerPosition = BollingerPosition(lastClose, ind.Bollinger)

	return ind
}

// guarded runs one indicator computation, recovering panics and logging
// non-insufficiency failures.
func (c *Computer) guarded(name string, fn func() (float64, error)) (value float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Warn().Str("indicator", name).Interface("panic", rec).Msg("Indicator computation panicked")
			err = errors.New("indicator panicked")
		}
	}()

	value, err = fn()
	if err != nil && !errors.Is(err, ErrInsufficientData) {
		c.logger.Debug().Err(err).Str("indicator", name).Msg("Indicator unavailable")
	}
	return value, err
}

func (c *Computer) guardedMACD(closes []float64) (value models.MACDValue, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Warn().Str("indicator", "macd").Interface("panic", rec).Msg("Indicator computation panicked")
			err = errors.New("indicator panicked")
		}
	}()
	return MACD(closes, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
}

func (c *Computer) guardedBollinger(closes []float64) (value models.BollingerBands, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Warn().Str("indicator", "bollinger").Interface("panic", rec).Msg("Indicator computation panicked")
			err = errors.New("indicator panicked")
		}
	}()
	return Bollinger(closes, DefaultBollingerPeriod, DefaultBollingerStdDev)
}

func (c *Computer) guardedStochastic(highs, lows, closes []float64) (value models.StochasticValue, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Warn().Str("indicator", "stochastic").Interface("panic", rec).Msg("Indicator computation panicked")
			err = errors.New("indicator panicked")
		}
	}()
	return Stochastic(highs, lows, closes, DefaultStochasticPeriod, DefaultStochasticSignal)
}

// ClassifyRSI labels an RSI value: >=70 overbought, <=30 oversold.
// A nil RSI is neutral.
func ClassifyRSI(rsi *float64) string {
	if rsi == nil {
		return models.RSINeutral
	}
	if *rsi >= 70 {
		return models.RSIOverbought
	}
	if *rsi <= 30 {
		return models.RSIOversold
	}
	return models.RSINeutral
}

// ClassifyMACD labels a MACD value: bullish when the MACD line is above
// the signal line with a positive histogram, bearish on the inverse.
func ClassifyMACD(m *models.MACDValue) string {
	if m == nil {
		return models.MACDNeutral
	}
	if m.MACD > m.Signal && m.Histogram > 0 {
		return models.MACDBullish
	}
	if m.MACD < m.Signal && m.Histogram < 0 {
		return models.MACDBearish
	}
	return models.MACDNeutral
}

// BollingerPosition labels where price sits relative to the bands.
// "Near" means beyond 70% of the half-band width from the middle.
func BollingerPosition(price float64, b *models.BollingerBands) string {
	if b == nil {
		return models.BandUnknown
	}
	switch {
	case price > b.Upper:
		return models.BandAboveUpper
	case price < b.Lower:
		return models.BandBelowLower
	case price > b.Middle+0.7*(b.Upper-b.Middle):
		return models.BandNearUpper
	case price < b.Middle-0.7*(b.Middle-b.Lower):
		return models.BandNearLower
	default:
		return models.BandMiddle
	}
}
