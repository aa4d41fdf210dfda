package watchlist

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"KWatch/internal/model"
)

var (
	ErrNotFound  = errors.New("symbol not on watchlist")
	ErrDuplicate = errors.New("symbol already on watchlist")
	ErrEmpty     = errors.New("symbol is empty")
)

// Store is a file-backed watchlist, safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// Load opens the watchlist at filePath. When the file doesn't exist it is
// created from defaults.
func Load(filePath string, defaults []model.WatchItem) (*Store, error) {
	state, ok, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	s := &Store{state: state, filePath: filePath}
	if !ok {
		for _, it := range defaults {
			it.Symbol = normalize(it.Symbol)
			if it.Symbol != "" && s.indexOf(it.Symbol) < 0 {
				s.state.Items = append(s.state.Items, it)
			}
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("save watchlist: %w", err)
		}
	}
	return s, nil
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Items returns a copy of the watchlist in insertion order.
func (s *Store) Items() []model.WatchItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.WatchItem(nil), s.state.Items...)
}

// Get looks up one symbol.
func (s *Store) Get(symbol string) (model.WatchItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(normalize(symbol)); i >= 0 {
		return s.state.Items[i], true
	}
	return model.WatchItem{}, false
}

// Add appends a symbol to the watchlist.
func (s *Store) Add(symbol, name string) (model.WatchItem, error) {
	symbol = normalize(symbol)
	if symbol == "" {
		return model.WatchItem{}, ErrEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(symbol) >= 0 {
		return model.WatchItem{}, fmt.Errorf("%s: %w", symbol, ErrDuplicate)
	}
	item := model.WatchItem{Symbol: symbol, Name: strings.TrimSpace(name)}
	s.state.Items = append(s.state.Items, item)
	if err := s.save(); err != nil {
		s.state.Items = s.state.Items[:len(s.state.Items)-1]
		return model.WatchItem{}, fmt.Errorf("save watchlist: %w", err)
	}
	return item, nil
}

// Remove deletes a symbol from the watchlist.
func (s *Store) Remove(symbol string) error {
	symbol = normalize(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(symbol)
	if i < 0 {
		return fmt.Errorf("%s: %w", symbol, ErrNotFound)
	}
	prev := s.state.Items
	items := append([]model.WatchItem(nil), prev[:i]...)
	s.state.Items = append(items, prev[i+1:]...)
	if err := s.save(); err != nil {
		s.state.Items = prev
		return fmt.Errorf("save watchlist: %w", err)
	}
	return nil
}

func (s *Store) indexOf(symbol string) int {
	for i, it := range s.state.Items {
		if it.Symbol == symbol {
			return i
		}
	}
	return -1
}

func (s *Store) save() error {
	return SaveState(s.filePath, s.state)
}
