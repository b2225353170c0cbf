// Package storage persists simulation runs on disk, one directory per run.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/curvsim/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	cyclesFile   = "cycles.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Source     string             `json:"source"`
	Gains      map[string]float64 `json:"gains,omitempty"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics"`
}

// NewRunID returns "<scenario>_<first 8 hex of a random uuid>".
func NewRunID(scenario string) string {
	if scenario == "" {
		scenario = "run"
	}
	return fmt.Sprintf("%s_%s", scenario, strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// Save writes meta and the result's cycles under a fresh run id. ID,
// Timestamp, Steps and Metrics are filled in from the result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	meta.ID = NewRunID(meta.Scenario)
	meta.Timestamp = time.Now().UTC()
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, cyclesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result.Cycles); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable run, newest first. A missing base directory
// is an empty store.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
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

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadCycles(runID string) ([]Row, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, cyclesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
