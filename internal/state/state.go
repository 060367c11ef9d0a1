package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileState represents the state of a single source post
type FileState struct {
	MTime  int64  `json:"mtime"`
	Hash   string `json:"hash"`
	Output string `json:"output"`

	// Options fingerprints the settings the output was extracted with
	Options string `json:"options,omitempty"`
}

// RunInfo describes the most recent build
type RunInfo struct {
	ID       string    `json:"id"`
	Finished time.Time `json:"finished"`
	Posts    int       `json:"posts"`
	Errors   int       `json:"errors"`
}

// State represents the build state
type State struct {
	mu sync.Mutex

	Files   map[string]*FileState `json:"files"`
	LastRun *RunInfo              `json:"last_run,omitempty"`
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Files: make(map[string]*FileState),
	}
}

// Load reads state from the state file
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	if state.Files == nil {
		state.Files = make(map[string]*FileState)
	}

	return &state, nil
}

// Save writes state to the state file
func (s *State) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// ComputeHash computes SHA256 hash of a file
func ComputeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// HasChanged checks if a source has changed since its output was written
// Uses hybrid mtime + hash approach
func (s *State) HasChanged(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	mtime := info.ModTime().Unix()

	s.mu.Lock()
	fileState, exists := s.Files[path]
	s.mu.Unlock()
	if !exists {
		// New file
		return true, nil
	}

	// Fast path: check mtime first
	if mtime == fileState.MTime {
		return false, nil
	}

	// mtime changed, compute hash to check for actual content changes
	hash, err := ComputeHash(path)
	if err != nil {
		return false, err
	}

	return hash != fileState.Hash, nil
}

// Update records the current state of a source, the output it produced and
// the options fingerprint it was produced with
func (s *State) Update(path, output, options string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	hash, err := ComputeHash(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Files[path] = &FileState{
		MTime:   info.ModTime().Unix(),
		Hash:    hash,
		Output:  output,
		Options: options,
	}

	return nil
}

// Entry returns a copy of the recorded state for a source
func (s *State) Entry(path string) (FileState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fileState, exists := s.Files[path]
	if !exists {
		return FileState{}, false
	}
	return *fileState, true
}

// Prune drops entries for sources not in keep and returns their output paths
func (s *State) Prune(keep []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]bool, len(keep))
	for _, k := range keep {
		wanted[k] = true
	}

	var removed []string
	for path, fileState := range s.Files {
		if !wanted[path] {
			removed = append(removed, fileState.Output)
			delete(s.Files, path)
		}
	}

	return removed
}

// RecordRun stores the summary of a finished build
func (s *State) RecordRun(run RunInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastRun = &run
}

// GetMTime returns the modification time recorded for a source
func (s *State) GetMTime(path string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fileState, exists := s.Files[path]; exists {
		return time.Unix(fileState.MTime, 0)
	}
	return time.Time{}
}
