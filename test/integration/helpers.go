package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnv holds the test environment
type TestEnv struct {
	T          *testing.T
	TmpDir     string
	BinaryPath string
	ConfigDir  string
	DBPath     string
}

// Setup creates a fresh test environment. Tests are skipped when the
// binary has not been built.
func Setup(t *testing.T) *TestEnv {
	t.Helper()

	binaryPath := findBinary(t)

	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	return &TestEnv{
		T:          t,
		TmpDir:     tmpDir,
		BinaryPath: binaryPath,
		ConfigDir:  configDir,
		DBPath:     filepath.Join(configDir, "catalog"),
	}
}

// Run executes craftbook-bin with args and returns stdout, stderr, exit code
func (e *TestEnv) Run(args ...string) (stdout, stderr string, exitCode int) {
	cmd := exec.Command(e.BinaryPath, args...)
	cmd.Dir = e.TmpDir
	cmd.Env = append(os.Environ(), "CRAFTBOOK_DB="+e.DBPath, "CRAFTBOOK_LOG=error")

	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	exitCode = 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		e.T.Fatalf("Failed to run command: %v", err)
	}

	return strings.TrimSpace(outBuf.String()), strings.TrimSpace(errBuf.String()), exitCode
}

// MustRun executes and fails test if exit code != 0
func (e *TestEnv) MustRun(args ...string) string {
	stdout, stderr, exitCode := e.Run(args...)
	if exitCode != 0 {
		e.T.Fatalf("Command failed: craftbook %v\nstdout: %s\nstderr: %s\nexit: %d",
			args, stdout, stderr, exitCode)
	}
	return stdout
}

// WriteFile creates a file in the temp folder and returns its path
func (e *TestEnv) WriteFile(name, content string) string {
	path := filepath.Join(e.TmpDir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.T.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// RecipeID returns the first column of the only line in a recipes listing
func (e *TestEnv) RecipeID() string {
	out := e.MustRun("recipes")
	lines := strings.Split(out, "\n")
	if len(lines) != 1 {
		e.T.Fatalf("Expected one recipe, got:\n%s", out)
	}
	return strings.Fields(lines[0])[0]
}

func findBinary(t *testing.T) string {
	// Look for binary relative to test location
	candidates := []string{
		"../../craftbook-bin",
		"../craftbook-bin",
		"./craftbook-bin",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}
	t.Skip("craftbook-bin not found; build it with 'go build -o craftbook-bin ./cmd/craftbook'")
	return ""
}
