// Package config provides the configuration loader for ward.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/ward/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
}

// Load reads the configuration from the given directory.
func (l *FileConfigLoader) Load(dir string) (*domain.Graph, error) {
	name := l.Filename
	if name == "" {
		name = domain.WardFileName
	}
	return Load(filepath.Join(dir, name))
}

// Load reads a configuration file from the given path and returns a
// validated domain.Graph.
func Load(path string) (*domain.Graph, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	// Strict decoding: unknown keys in a target definition and non-string
	// command entries are configuration errors, not silently dropped.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var wardfile Wardfile
	if err := dec.Decode(&wardfile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	g := domain.NewGraph()
	for name, dto := range wardfile {
		if strings.TrimSpace(name) == "" {
			return nil, zerr.New("target name must not be empty")
		}
		if strings.ContainsRune(name, os.PathSeparator) {
			return nil, zerr.With(zerr.New("target name must not contain path separators"), "target", name)
		}

		target := &domain.Target{
			Name:           domain.NewInternedString(name),
			Dependencies:   internStrings(dto.Dependencies),
			InputPaths:     canonicalizePaths(dto.InputPaths),
			BuildCommands:  dto.Build,
			ServiceCommand: dto.Service,
		}

		if err := g.AddTarget(target); err != nil {
			return nil, err
		}
	}

	// Resolves dependency edges, rejecting unknown dependencies and cycles.
	if err := g.Validate(); err != nil {
		return nil, err
	}

	return g, nil
}

func internStrings(strs []string) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}
	res := make([]domain.InternedString, len(strs))
	for i, s := range strs {
		res[i] = domain.NewInternedString(s)
	}
	return res
}

// canonicalizePaths cleans each declared input path, preserving the declared
// order so the fingerprint digest is stable against formatting-only edits.
func canonicalizePaths(strs []string) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}
	res := make([]domain.InternedString, len(strs))
	for i, s := range strs {
		res[i] = domain.NewInternedString(filepath.Clean(s))
	}
	return res
}
