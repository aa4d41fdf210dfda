package model

// WatchItem is a ticker on the watchlist.
type WatchItem struct {
	Symbol string `json:"symbol" yaml:"symbol" validate:"required"`
	Name   string `json:"name" yaml:"name"`
}

// DisplayName falls back to the symbol when no name is set.
func (w WatchItem) DisplayName() string {
	if w.Name == "" {
		return w.Symbol
	}
	return w.Name
}
