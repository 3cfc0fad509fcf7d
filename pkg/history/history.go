package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"okx-dex/pkg/types"
)

const DefaultFileName = ".okx-dex-history.json"

// Record is one executed swap
type Record struct {
	ID            string    `json:"id"`
	Time          time.Time `json:"time"`
	ChainID       string    `json:"chainId"`
	FromSymbol    string    `json:"fromSymbol"`
	ToSymbol      string    `json:"toSymbol"`
	FromAmount    string    `json:"fromAmount"`
	ToAmount      string    `json:"toAmount"`
	TransactionID string    `json:"transactionId"`
	ExplorerURL   string    `json:"explorerUrl"`
}

// NewRecord builds a record from a swap result
func NewRecord(chainID string, r *types.SwapResult) Record {
	rec := Record{
		ChainID:       chainID,
		TransactionID: r.TransactionID,
		ExplorerURL:   r.ExplorerURL,
	}
	if d := r.Details; d != nil {
		rec.FromSymbol, rec.FromAmount = d.FromToken.Symbol, d.FromToken.Amount
		rec.ToSymbol, rec.ToAmount = d.ToToken.Symbol, d.ToToken.Amount
	}
	return rec
}

type file struct {
	Swaps map[string]Record `json:"swaps"`
}

// Store persists swap records to a JSON file
type Store struct {
	path  string
	mu    sync.RWMutex
	swaps map[string]Record
	now   func() time.Time
}

// Open loads the store at path, defaulting to DefaultFileName in the home
// directory. A missing file is an empty store.
func Open(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, DefaultFileName)
	}

	s := &Store{path: path, swaps: make(map[string]Record), now: time.Now}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	if f.Swaps != nil {
		s.swaps = f.Swaps
	}
	return s, nil
}

// Add assigns rec an id and timestamp and saves it
func (s *Store) Add(rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.Time = s.now().UTC()
	s.swaps[rec.ID] = rec

	if err := s.saveLocked(); err != nil {
		delete(s.swaps, rec.ID)
		return Record{}, err
	}
	return rec, nil
}

// Get returns the record with id
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.swaps[id]
	if !ok {
		return Record{}, fmt.Errorf("swap '%s' not found", id)
	}
	return rec, nil
}

// List returns records newest first, filtered to chainID when it is set
func (s *Store) List(chainID string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.swaps))
	for _, rec := range s.swaps {
		if chainID == "" || rec.ChainID == chainID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out
}

func (s *Store) Path() string { return s.path }

// saveLocked writes through a temp file and rename. Callers hold mu.
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(file{Swaps: s.swaps}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
