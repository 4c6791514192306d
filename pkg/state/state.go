package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the build record stored at the top of a build tree.
const FileName = "bindbuild-state.json"

// Record describes the last successful run against a build tree.
type Record struct {
	LastAction string   `json:"lastAction"`
	Platform   string   `json:"platform"`
	BuildType  string   `json:"buildType"`
	MakeSpec   string   `json:"makeSpec"`
	QtVersion  string   `json:"qtVersion"`
	Jobs       string   `json:"jobs,omitempty"`
	Steps      []string `json:"steps"`
	WorkflowID string   `json:"workflowId,omitempty"`
	Timestamp  string   `json:"timestamp"`
}

// Compatible reports whether a build tree recorded with r can be reused for the given build type
// and make-spec without reconfiguring.
func (r Record) Compatible(buildType, makeSpec string) bool {
	return r.BuildType == buildType && r.MakeSpec == makeSpec
}

// Manager persists build records.
type Manager struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

var (
	errNoRecord    = errors.New("no build record")
	errWriteFailed = errors.New("build record could not be written")
	errEmptyDir    = errors.New("build directory is required")
)

// NewManager constructs a Manager.
func NewManager() *Manager {
	return &Manager{dirPerm: 0o755, filePerm: 0o644}
}

// ErrNoRecord exposes the missing record sentinel.
func ErrNoRecord() error { return errNoRecord }

// ErrWriteFailed exposes the write failure sentinel.
func ErrWriteFailed() error { return errWriteFailed }

// Path returns the record location inside buildDir.
func Path(buildDir string) string {
	return filepath.Join(buildDir, FileName)
}

// Write atomically replaces the record of buildDir and returns its path.
func (m *Manager) Write(buildDir string, record Record) (string, error) {
	if buildDir == "" {
		return "", errEmptyDir
	}
	if record.Timestamp == "" {
		record.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if err := os.MkdirAll(buildDir, m.dirPerm); err != nil {
		return "", fmt.Errorf("%w: %w", errWriteFailed, err)
	}

	tmp, err := os.CreateTemp(buildDir, "state-*.json")
	if err != nil {
		return "", fmt.Errorf("%w: %w", errWriteFailed, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(m.filePerm); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %w", errWriteFailed, err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %w", errWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", errWriteFailed, err)
	}

	path := Path(buildDir)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%w: %w", errWriteFailed, err)
	}
	return path, nil
}

// Read loads the record of buildDir. A missing file yields ErrNoRecord.
func (m *Manager) Read(buildDir string) (Record, error) {
	data, err := os.ReadFile(Path(buildDir))
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, errNoRecord
	}
	if err != nil {
		return Record{}, fmt.Errorf("read build record: %w", err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("decode build record: %w", err)
	}
	return record, nil
}
