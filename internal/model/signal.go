package model

import "time"

// Signal is the action derived from a K value.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalHold Signal = "HOLD"
	SignalSell Signal = "SELL"
)

// KResult is the output of the K value calculator.
type KResult struct {
	Price float64 // close of the last bar
	K     float64
	Steps int // number of RSV values folded into K
}

// Reading is one dashboard row for a watched ticker.
// When Available is false, Price, K and Signal are zero and Err says why.
type Reading struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	K         float64   `json:"k"`
	Signal    Signal    `json:"signal,omitempty"`
	Available bool      `json:"available"`
	Err       string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}
