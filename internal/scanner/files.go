package scanner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var supportedExtensions = map[string]bool{
	".abap": true,
	".txt":  true,
	".prog": true,
	".incl": true,
	".fugr": true,
	".clas": true,
	".intf": true,
	".prg":  true,
	".src":  true,
}

var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	".git":         true,
	"__pycache__":  true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	"bin":          true,
}

// unitTypes maps abapGit object suffixes (zreport.prog.abap) to unit types.
var unitTypes = map[string]string{
	"prog": "PROG",
	"incl": "INCL",
	"fugr": "FUGR",
	"func": "FUNC",
	"clas": "CLAS",
	"intf": "INTF",
	"form": "FORM",
}

// LoadResult holds the code units read from a directory tree.
type LoadResult struct {
	Root         string     `json:"root"`
	Units        []CodeUnit `json:"units"`
	FilesLoaded  int        `json:"filesLoaded"`
	FilesSkipped int        `json:"filesSkipped,omitempty"`
}

// LoadDir walks root and turns every file with a supported extension into a
// CodeUnit. extraExts adds extensions (".txt" or "txt").
func LoadDir(root string, extraExts ...string) (LoadResult, error) {
	result := LoadResult{Root: root}

	exts := make(map[string]bool, len(supportedExtensions)+len(extraExts))
	for e := range supportedExtensions {
		exts[e] = true
	}
	for _, e := range extraExts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !exts[strings.ToLower(filepath.Ext(path))] {
			result.FilesSkipped++
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", relPath, err)
		}

		result.Units = append(result.Units, unitFromFile(filepath.ToSlash(relPath), string(data)))
		result.FilesLoaded++
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("walk %s: %w", root, err)
	}
	return result, nil
}

// unitFromFile derives unit identifiers from a slash-separated relative path:
// the top-level directory names the program, the file name the include.
func unitFromFile(relPath, code string) CodeUnit {
	base := filepath.Base(relPath)
	parts := strings.Split(base, ".")
	include := strings.ToUpper(parts[0])

	unitType := strings.ToUpper(strings.TrimPrefix(filepath.Ext(base), "."))
	if len(parts) >= 3 {
		if t, ok := unitTypes[strings.ToLower(parts[len(parts)-2])]; ok {
			unitType = t
		}
	}

	program := include
	if dir, _, found := strings.Cut(relPath, "/"); found {
		program = strings.ToUpper(dir)
	}

	return CodeUnit{
		Program: program,
		Include: include,
		Type:    unitType,
		Code:    code,
		Source:  relPath,
	}
}

// LoadUnitsJSON decodes either a JSON array of units or a single unit.
func LoadUnitsJSON(r io.Reader) ([]CodeUnit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read units: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode units: empty input")
	}

	if trimmed[0] == '[' {
		var units []CodeUnit
		if err := json.Unmarshal(trimmed, &units); err != nil {
			return nil, fmt.Errorf("decode units: %w", err)
		}
		return units, nil
	}

	var unit CodeUnit
	if err := json.Unmarshal(trimmed, &unit); err != nil {
		return nil, fmt.Errorf("decode units: %w", err)
	}
	return []CodeUnit{unit}, nil
}
