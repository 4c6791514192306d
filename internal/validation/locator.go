package validation

import (
	"os"
	"os/exec"
	"path/filepath"
)

// ToolLocator models host lookups for build tools, allowing tests to stub the filesystem and PATH.
type ToolLocator interface {
	// LookPath searches the executable search path for name.
	LookPath(name string) (string, bool)
	// Exists reports whether something exists at path.
	Exists(path string) bool
	// Abs makes path absolute.
	Abs(path string) (string, error)
}

// DefaultLocator interrogates the running host.
type DefaultLocator struct{}

// LookPath wraps exec.LookPath.
func (DefaultLocator) LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}

// Exists follows symlinks; directories count as existing.
func (DefaultLocator) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Abs wraps filepath.Abs.
func (DefaultLocator) Abs(path string) (string, error) { return filepath.Abs(path) }
