package state_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dobrovols/bindbuild/pkg/state"
)

func sampleRecord() state.Record {
	return state.Record{
		LastAction: "build",
		Platform:   "linux",
		BuildType:  "Release",
		MakeSpec:   "ninja",
		QtVersion:  "6",
		Jobs:       "-j8",
		Steps:      []string{"configure", "build"},
		WorkflowID: "wf-1234",
	}
}

func TestManagerWriteCreatesRecord(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build", "qfp-qt6-release")
	mgr := state.NewManager()

	path, err := mgr.Write(dir, sampleRecord())
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if path != state.Path(dir) {
		t.Fatalf("path = %q, want %q", path, state.Path(dir))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["makeSpec"] != "ninja" || payload["lastAction"] != "build" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if ts, _ := payload["timestamp"].(string); ts == "" {
		t.Fatalf("expected timestamp to be filled in")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temporary files to be cleaned up, found %d entries", len(entries))
	}
}

func TestManagerReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mgr := state.NewManager()
	if _, err := mgr.Write(dir, sampleRecord()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	update := sampleRecord()
	update.LastAction = "install"
	if _, err := mgr.Write(dir, update); err != nil {
		t.Fatalf("second Write returned error: %v", err)
	}

	got, err := mgr.Read(dir)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got.LastAction != "install" || len(got.Steps) != 2 {
		t.Fatalf("unexpected record %#v", got)
	}
}

func TestManagerReadMissing(t *testing.T) {
	_, err := state.NewManager().Read(t.TempDir())
	if !errors.Is(err, state.ErrNoRecord()) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
}

func TestManagerReadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(state.Path(dir), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := state.NewManager().Read(dir); err == nil || errors.Is(err, state.ErrNoRecord()) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestManagerWriteFailsWhenDirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := state.NewManager().Write(file, sampleRecord())
	if !errors.Is(err, state.ErrWriteFailed()) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}
}

func TestRecordCompatible(t *testing.T) {
	r := sampleRecord()
	if !r.Compatible("Release", "ninja") {
		t.Fatalf("expected identical settings to be compatible")
	}
	if r.Compatible("Debug", "ninja") || r.Compatible("Release", "make") {
		t.Fatalf("expected changed settings to be incompatible")
	}
}
