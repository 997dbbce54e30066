// Package models defines data structures for Folio
package models

import (
	"time"
)

// Quote holds a live price snapshot from a market-data source
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"change_pct"` // 24h percentage change
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

// PricePoint is a cached last-known-good price for a symbol.
// Timestamp is epoch milliseconds, matching the serialized cache format.
type PricePoint struct {
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// Candle represents a single bar of an OHLC price series.
// Series are ordered chronologically ascending; the last element is the
// most recent bar.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open,omitempty"`
	High      float64   `json:"high,omitempty"`
	Low       float64   `json:"low,omitempty"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume,omitempty"`
}

// ResolvedQuote is the output of the price resolver: one authoritative
// price and 24h change, with the source that supplied each.
// Known is false when no source (including the fallback table) had the
// symbol — callers must treat that as "unknown", not "worthless".
type ResolvedQuote struct {
	Symbol       string  `json:"symbol"`
	Price        float64 `json:"price"`
	ChangePct    float64 `json:"change_pct"`
	PriceSource  string  `json:"price_source"`
	ChangeSource string  `json:"change_source"`
	Known        bool    `json:"known"`
}

// MACDValue holds the last-bar MACD line, signal line, and histogram.
type MACDValue struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// BollingerBands holds the last-bar band values.
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// StochasticValue holds the last-bar stochastic oscillator values.
type StochasticValue struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// TechnicalIndicators is a latest-bar snapshot of indicator values.
// Nil / absent fields mean the series was too short for that indicator
// or its computation failed — never an error to the caller.
type TechnicalIndicators struct {
	Symbol     string           `json:"symbol,omitempty"`
	ComputedAt time.Time        `json:"computed_at"`
	Bars       int              `json:"bars"`
	LastClose  float64          `json:"last_close"`
	RSI        *float64         `json:"rsi,omitempty"`
	MACD       *MACDValue       `json:"macd,omitempty"`
	Bollinger  *BollingerBands  `json:"bollinger,omitempty"`
	SMA        map[int]float64  `json:"sma,omitempty"`
	EMA        map[int]float64  `json:"ema,omitempty"`
	Stochastic *StochasticValue `json:"stochastic,omitempty"`
	ATR        *float64         `json:"atr,omitempty"`
	ADX        *float64         `json:"adx,omitempty"`

	// Derived qualitative signals
	RSISignal         string `json:"rsi_signal,omitempty"`         // overbought, oversold, neutral
	MACDSignal        string `json:"macd_signal,omitempty"`        // bullish, bearish, neutral
	BollingerPosition string `json:"bollinger_position,omitempty"` // above_upper, near_upper, middle, near_lower, below_lower, unknown
}

// RSI signal classifications
const (
	RSIOverbought = "overbought"
	RSIOversold   = "oversold"
	RSINeutral    = "neutral"
)

// MACD signal classifications
const (
	MACDBullish = "bullish"
	MACDBearish = "bearish"
	MACDNeutral = "neutral"
)

// Bollinger position classifications
const (
	BandAboveUpper = "above_upper"
	BandNearUpper  = "near_upper"
	BandMiddle     = "middle"
	BandNearLower  = "near_lower"
	BandBelowLower = "below_lower"
	BandUnknown    = "unknown"
)
