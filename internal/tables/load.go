package tables

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// File is the structure of a table map file.
//
//	extend: true
//	groups:
//	  - name: custom
//	    tables:
//	      ZMSEG_COPY: MATDOC
type File struct {
	// Extend layers the file over the built-in tables instead of replacing them.
	Extend bool        `yaml:"extend"`
	Groups []FileGroup `yaml:"groups"`
}

// FileGroup is one named group of obsolete -> replacement pairs.
type FileGroup struct {
	Name   string            `yaml:"name"`
	Tables map[string]string `yaml:"tables"`
}

// Parse builds a KnowledgeBase from table map YAML.
func Parse(data []byte) (*KnowledgeBase, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse table map: %w", err)
	}

	var entries []Entry
	for _, g := range f.Groups {
		group := Group(g.Name)
		for old, repl := range g.Tables {
			entries = append(entries, Entry{Obsolete: old, Replacement: repl, Group: group})
		}
	}

	kb, err := New(entries)
	if err != nil {
		return nil, fmt.Errorf("table map: %w", err)
	}
	if f.Extend {
		return Default().Merge(kb), nil
	}
	return kb, nil
}

// LoadFile reads a table map file. An empty path returns Default.
func LoadFile(path string) (*KnowledgeBase, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table map: %w", err)
	}
	return Parse(data)
}
