package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/thisisjab/myn/fault"
	"github.com/thisisjab/myn/lang/token"
)

// DefaultKeywordsFile is looked up next to the first source file when no keywords file is configured.
const DefaultKeywordsFile = "myn.config"

// ParseKeywords reads keyword overrides in the `keyword = spelling` line format. Blank lines and
// lines starting with `#` are ignored. Every problem is collected before failing.
func ParseKeywords(r io.Reader) (map[string]string, error) {
	overrides := make(map[string]string)
	fields := fault.FieldErrorsMetadata{}
	seenAt := make(map[string]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		field := fmt.Sprintf("line %d", lineNo)

		key, value, ok := strings.Cut(line, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			fields[field] = append(fields[field], "Expected `keyword = spelling`.")
			continue
		}

		if _, known := token.LookupKeyword(key); !known {
			fields[field] = append(fields[field], fmt.Sprintf("Unknown keyword %q.", key))
			continue
		}

		if first, dup := seenAt[key]; dup {
			fields[field] = append(fields[field], fmt.Sprintf("Keyword %q is already set on line %d.", key, first))
			continue
		}
		seenAt[key] = lineNo

		overrides[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fault.New(fault.ConfigurationCode, "cannot read keyword configuration").WithOriginal(err)
	}

	if len(fields) > 0 {
		return nil, fault.New(fault.ConfigurationCode, "invalid keyword configuration").WithMetadata(fields)
	}

	// Spellings themselves are checked against each other by the keyword table.
	if err := token.ValidateOverrides(overrides); err != nil {
		return nil, err
	}

	return overrides, nil
}

// LoadKeywords reads a keywords file. A missing file is reported with fault.NotFoundCode.
func LoadKeywords(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fault.New(fault.NotFoundCode, fmt.Sprintf("keywords file %s not found", path)).WithOriginal(err)
		}
		return nil, fmt.Errorf("cannot open keywords file: %w", err)
	}
	defer f.Close()

	overrides, err := ParseKeywords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return overrides, nil
}

// BuildTable creates the keyword table from the keywords file and the inline overrides, the
// latter taking precedence. An empty keywordsFile falls back to DefaultKeywordsFile inside
// sourceDir, which may be missing.
func BuildTable(keywordsFile, sourceDir string, inline map[string]string) (*token.Table, error) {
	overrides := make(map[string]string)

	path, optional := keywordsFile, false
	if path == "" && sourceDir != "" {
		path, optional = filepath.Join(sourceDir, DefaultKeywordsFile), true
	}

	if path != "" {
		fromFile, err := LoadKeywords(path)
		switch {
		case err == nil:
			for k, v := range fromFile {
				overrides[k] = v
			}
		case optional && fault.Is(err, fault.NotFoundCode):
		default:
			return nil, err
		}
	}

	for k, v := range inline {
		overrides[k] = v
	}

	table := token.NewTable()
	if err := table.Rebuild(overrides); err != nil {
		return nil, err
	}

	return table, nil
}
