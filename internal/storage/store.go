package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/gwdetect/internal/power"
	"github.com/san-kum/gwdetect/internal/sweep"
)

// Store persists completed sweeps: one directory per sweep holding
// metadata.json and results.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type SweepMetadata struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Timestamp  time.Time    `json:"timestamp"`
	Calculator power.Config `json:"calculator"`
	Condensed  bool         `json:"condensed"`
	Runs       int          `json:"runs"`
	Failed     int          `json:"failed"`
}

// Save writes one sweep and returns its run id.
func (s *Store) Save(name string, cfg power.Config, condensed bool, table sweep.Table) (string, error) {
	runID := fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := SweepMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  time.Now(),
		Calculator: cfg,
		Condensed:  condensed,
		Runs:       len(table),
		Failed:     len(table.Failed()),
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := table.SaveCSV(filepath.Join(runDir, "results.csv")); err != nil {
		return "", err
	}

	return runID, nil
}

// Load reads one sweep's metadata.
func (s *Store) Load(runID string) (*SweepMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta SweepMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: corrupt metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadResults reads one sweep's results table back.
func (s *Store) LoadResults(runID string) (sweep.Table, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "results.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sweep.ReadCSV(f)
}

// List returns all saved sweeps, newest first.
func (s *Store) List() ([]SweepMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []SweepMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}
