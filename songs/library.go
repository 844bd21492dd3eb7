package songs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go-piano/sequencer"
)

// ErrNotFound is returned when a name matches no built-in or user song
var ErrNotFound = errors.New("song not found")

// File is the on-disk song format
type File struct {
	Title string         `json:"title"`
	Notes sequencer.Plan `json:"notes"`
}

// Dir returns the user song directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-piano", "songs"), nil
}

// ListUser returns the names of the song files in Dir
func ListUser() ([]string, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}

	sort.Strings(names)
	return names, nil
}

// LoadFile reads and validates a song file. A file without a title is
// named after itself.
func LoadFile(path string) (sequencer.Plan, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", path, err)
	}
	if err := f.Notes.Validate(); err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	if f.Title == "" {
		f.Title = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return f.Notes, f.Title, nil
}

// Resolve finds a song by built-in name, then by user song name, then as
// a path to a song file
func Resolve(name string) (sequencer.Plan, string, error) {
	if plan, title, ok := Lookup(name); ok {
		return plan, title, nil
	}

	if dir, err := Dir(); err == nil && !strings.ContainsRune(name, filepath.Separator) {
		path := filepath.Join(dir, name+".json")
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	if strings.HasSuffix(name, ".json") {
		if _, err := os.Stat(name); err == nil {
			return LoadFile(name)
		}
	}

	return nil, "", fmt.Errorf("%w: %q", ErrNotFound, name)
}
