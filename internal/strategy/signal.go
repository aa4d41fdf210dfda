package strategy

import "KWatch/internal/model"

// K value thresholds of the "buy only one stock" rule: K<20 buy, K>80 sell.
const (
	BuyBelow  = 20.0
	SellAbove = 80.0
)

// Action describes how a signal is presented to the user.
type Action struct {
	Label string
	Emoji string
	Color string // CSS/ANSI-friendly color name
}

// Actions maps each signal to its presentation.
var Actions = map[model.Signal]Action{
	model.SignalBuy:  {Label: "進場訊號 (買)", Emoji: "🟢", Color: "green"},
	model.SignalSell: {Label: "過熱訊號 (賣)", Emoji: "🔴", Color: "red"},
	model.SignalHold: {Label: "觀望持有", Emoji: "🟡", Color: "orange"},
}

// Classify maps a K value to a signal.
func Classify(k float64) model.Signal {
	switch {
	case k < BuyBelow:
		return model.SignalBuy
	case k > SellAbove:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

// Describe returns the presentation of a signal, defaulting to hold.
func Describe(s model.Signal) Action {
	if a, ok := Actions[s]; ok {
		return a
	}
	return Actions[model.SignalHold]
}

// Evaluate fills in the signal of an available reading.
func Evaluate(r *model.Reading) {
	if !r.Available {
		r.Signal = ""
		return
	}
	r.Signal = Classify(r.K)
}
