// Package storage persists datasets as a directory of JSON documents plus a
// TOML verification report. The JSON files are the round-trip source of
// truth; summary.json is derived and regenerated on every save.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BrightLiao/PokerAnalysis/internal/model"
)

const (
	handsFile   = "hands.json"
	playersFile = "players.json"
	summaryFile = "summary.json"
	reportFile  = "report.toml"
)

// Summary is the derived overview written next to the dataset.
type Summary struct {
	DatasetID    string     `json:"dataset_id"`
	TotalHands   int        `json:"total_hands"`
	TotalPlayers int        `json:"total_players"`
	DateStart    *time.Time `json:"date_start,omitempty"`
	DateEnd      *time.Time `json:"date_end,omitempty"`
	GeneratedAt  time.Time  `json:"generated_at"`
}

// Store reads and writes dataset directories.
type Store struct {
	logger zerolog.Logger
	clock  quartz.Clock
}

// NewStore creates a store. A nil clock uses the real one; tests inject a
// mock so generated-at timestamps are deterministic.
func NewStore(logger zerolog.Logger, clock quartz.Clock) *Store {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Store{logger: logger, clock: clock}
}

// Save writes the dataset and its report into dir, creating it if needed.
func (s *Store) Save(dir string, ds *model.Dataset, report *model.Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("storage: create output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, handsFile), ds.Hands); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, playersFile), ds.Players); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, summaryFile), s.summarize(ds)); err != nil {
		return err
	}
	if report != nil {
		if err := writeReport(filepath.Join(dir, reportFile), report); err != nil {
			return err
		}
	}

	s.logger.Info().Str("dir", dir).Int("hands", len(ds.Hands)).
		Int("players", len(ds.Players)).Msg("dataset saved")
	return nil
}

// Load reads a dataset previously written by Save.
func (s *Store) Load(dir string) (*model.Dataset, error) {
	ds := model.NewDataset()
	if err := readJSON(filepath.Join(dir, handsFile), &ds.Hands); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, playersFile), &ds.Players); err != nil {
		return nil, err
	}
	return ds, nil
}

// LoadSummary reads the derived summary document.
func (s *Store) LoadSummary(dir string) (*Summary, error) {
	var summary Summary
	if err := readJSON(filepath.Join(dir, summaryFile), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// LoadReport reads the verification report, or returns nil when none was
// written.
func (s *Store) LoadReport(dir string) (*model.Report, error) {
	path := filepath.Join(dir, reportFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var report model.Report
	if _, err := toml.DecodeFile(path, &report); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", reportFile, err)
	}
	return &report, nil
}

func (s *Store) summarize(ds *model.Dataset) *Summary {
	summary := &Summary{
		DatasetID:    uuid.NewString(),
		TotalHands:   len(ds.Hands),
		TotalPlayers: len(ds.Players),
		GeneratedAt:  s.clock.Now().UTC(),
	}
	if len(ds.Hands) > 0 {
		start := ds.Hands[0].Timestamp.UTC()
		end := ds.Hands[len(ds.Hands)-1].Timestamp.UTC()
		summary.DateStart = &start
		summary.DateEnd = &end
	}
	return summary
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", filepath.Base(path), err)
	}
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("storage: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeFileAtomic writes via a temp file in the same directory plus rename,
// so a concurrent reader sees either the previous dataset file or the new
// one, never a torn write.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	tmp = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("storage: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeReport(path string, report *model.Report) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("storage: encode %s: %w", reportFile, err)
	}
	if err := writeFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("storage: write %s: %w", reportFile, err)
	}
	return nil
}
