// Package config reads and writes the farming node's own configuration
// file. The document is treated as opaque: it is parsed into a YAML node
// tree that preserves key order and nesting, and croft never interprets
// its contents beyond round-tripping them.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the node's configuration file, resolved under
// <rootDir>/config/.
const FileName = "config.yaml"

// IOError wraps a failure reading, parsing, or writing the configuration
// document.
type IOError struct {
	Op   string // "read", "parse", "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("config %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Document holds one parsed configuration tree. The underlying node keeps
// the file's key order, so a read-modify-write cycle does not reshuffle
// unrelated entries.
type Document struct {
	node yaml.Node
}

// FromValue builds a Document from a Go value, for callers that own the
// schema they are writing.
func FromValue(in any) (*Document, error) {
	var d Document
	if err := d.node.Encode(in); err != nil {
		return nil, fmt.Errorf("encode config value: %w", err)
	}
	return &d, nil
}

// Decode unmarshals the document into out.
func (d *Document) Decode(out any) error {
	return d.node.Decode(out)
}

// Store reads and writes the configuration document under one root
// directory. The file itself is unguarded against concurrent writers;
// callers coordinate access.
type Store struct {
	rootDir string
}

// NewStore creates a Store for the node root directory.
func NewStore(rootDir string) (*Store, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("rootDir is required")
	}
	return &Store{rootDir: rootDir}, nil
}

// Path returns the configuration file location.
func (s *Store) Path() string {
	return filepath.Join(s.rootDir, "config", FileName)
}

// Read loads and parses the configuration document.
func (s *Store) Read() (*Document, error) {
	path := s.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	var d Document
	if err := yaml.Unmarshal(data, &d.node); err != nil {
		return nil, &IOError{Op: "parse", Path: path, Err: err}
	}
	return &d, nil
}

// Write serializes doc and atomically replaces the configuration file,
// writing a sibling temp file and renaming it over the target. The
// containing directory is created if missing.
func (s *Store) Write(doc *Document) error {
	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc.node); err != nil {
		enc.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := enc.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
