package dictionary

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileSource loads dictionaries from YAML files on disk. Used for local
// development and for deployments without the remote dictionary service.
// Each file declares one dictionary:
//
//	type: LEVEL
//	entries:
//	  - code: BEGINNER
//	    label: Beginner
type FileSource struct {
	rootDir string
	mu      sync.RWMutex
	tables  map[Type][]Entry
}

type dictFile struct {
	Type    string  `yaml:"type"`
	Entries []Entry `yaml:"entries"`
}

// NewFileSource creates a file-backed dictionary source and loads every
// dictionary under rootDir.
func NewFileSource(rootDir string) (*FileSource, error) {
	s := &FileSource{
		rootDir: rootDir,
		tables:  make(map[Type][]Entry),
	}

	if err := s.loadAll(); err != nil {
		return nil, fmt.Errorf("loading dictionaries: %w", err)
	}

	slog.Info("dictionaries loaded", "types", len(s.tables))
	return s, nil
}

func (s *FileSource) Lookup(_ context.Context, t Type) ([]Entry, error) {
	if !Known(t) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, ok := s.tables[t]
	if !ok {
		return nil, fmt.Errorf("no dictionary loaded for type %s", t)
	}
	return append([]Entry(nil), entries...), nil
}

func (s *FileSource) loadAll() error {
	return filepath.Walk(s.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return s.loadFile(path)
	})
}

func (s *FileSource) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var df dictFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		slog.Warn("skipping invalid dictionary YAML", "path", path, "error", err)
		return nil
	}

	t := Type(strings.ToUpper(strings.TrimSpace(df.Type)))
	if !Known(t) {
		return nil // Not a dictionary file
	}

	s.mu.Lock()
	s.tables[t] = df.Entries
	s.mu.Unlock()

	return nil
}
