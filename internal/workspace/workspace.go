// Package workspace prepares the local output directory for a batch run.
package workspace

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// EnsureOutputDir creates dir if needed and makes sure ignoreFile excludes it
// from version control. The rule "/<dir>" is appended at most once; a
// missing ignore file is created. An empty ignoreFile skips the ignore step,
// as does a dir outside the working tree, which no root-anchored rule can name.
func EnsureOutputDir(dir, ignoreFile string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if ignoreFile == "" {
		return nil
	}
	rule, ok := IgnoreRule(dir)
	if !ok {
		logger.Info("output dir is outside the working tree, not adding ignore rule", "dir", dir, "ignore_file", ignoreFile)
		return nil
	}
	return ensureIgnored(ignoreFile, rule)
}

// IgnoreRule returns the ignore-file line that excludes dir. It reports false
// when dir is absolute, escapes the working tree, or is the tree itself.
func IgnoreRule(dir string) (string, bool) {
	clean := filepath.Clean(dir)
	if filepath.IsAbs(clean) || clean == "." || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", false
	}
	return "/" + filepath.ToSlash(clean), true
}

func ensureIgnored(ignoreFile, rule string) error {
	content, err := os.ReadFile(ignoreFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", ignoreFile, err)
	}
	if hasLine(content, rule) {
		return nil
	}

	f, err := os.OpenFile(ignoreFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", ignoreFile, err)
	}
	defer f.Close()

	var line string
	if len(content) > 0 && !bytes.HasSuffix(content, []byte("\n")) {
		line = "\n"
	}
	line += rule + "\n"
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append to %s: %w", ignoreFile, err)
	}
	return f.Close()
}

func hasLine(content []byte, rule string) bool {
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == rule {
			return true
		}
	}
	return false
}
