// Package snapfile reads and writes the portable project file: the Snap
// document as pretty-printed JSON with the .snap extension.
package snapfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codesnap/snap"
)

// Ext is the project file extension.
const Ext = ".snap"

var (
	// ErrEmpty is returned when there is nothing to import.
	ErrEmpty = errors.New("snapfile: empty document")
	// ErrMalformed wraps every parse failure; the underlying cause is kept.
	ErrMalformed = errors.New("snapfile: malformed document")
)

// Report describes what Decode had to do to make a document loadable.
type Report struct {
	SourceVersion string
	Warnings      []string
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Export serializes s as indented JSON followed by a newline. The output
// depends only on the document, so exporting twice gives identical bytes.
func Export(s *snap.Snap) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("snapfile: export: nil document")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapfile: export: %w", err)
	}
	return append(data, '\n'), nil
}

// Import parses a project file. See Decode.
func Import(data []byte) (*snap.Snap, error) {
	s, _, err := Decode(data)
	return s, err
}

// Decode parses a project file into a normalized document. Missing fields
// get defaults, a newer or unknown version is loaded best-effort and noted
// in the report, and duplicate or empty element ids are replaced. Anything
// that is not a JSON object shaped like a Snap fails with ErrMalformed.
func Decode(data []byte) (*snap.Snap, Report, error) {
	var rep Report
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, rep, ErrEmpty
	}
	if trimmed[0] != '{' {
		return nil, rep, fmt.Errorf("%w: top level is not an object", ErrMalformed)
	}

	var s snap.Snap
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, rep, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	rep.SourceVersion = s.Version
	switch {
	case s.Version == "":
		rep.warn("missing version, assuming %s", snap.CurrentVersion)
		s.Version = snap.CurrentVersion
	case !knownVersion(s.Version):
		rep.warn("unknown version %q, loading recognized fields", s.Version)
	}
	countUnknownTypes(s.Elements, &rep)

	snap.Normalize(&s)
	if n := snap.RepairIDs(&s, snap.NewID); n > 0 {
		rep.warn("replaced %d duplicate or missing element ids", n)
	}
	return &s, rep, nil
}

// knownVersions lists every version this package has written.
var knownVersions = []string{"1.0", snap.CurrentVersion}

func knownVersion(v string) bool {
	for _, k := range knownVersions {
		if k == v {
			return true
		}
	}
	return false
}

func countUnknownTypes(els []snap.Element, rep *Report) {
	for i := range els {
		if !els[i].Type.Known() {
			rep.warn("element %q has unknown type %q, kept as is", els[i].ID, els[i].Type)
		}
		countUnknownTypes(els[i].Elements, rep)
	}
}

// ReadFile loads a project file from disk.
func ReadFile(path string) (*snap.Snap, Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Report{}, err
	}
	s, rep, err := Decode(data)
	if err != nil {
		return nil, rep, fmt.Errorf("%s: %w", path, err)
	}
	return s, rep, nil
}

// WriteFile saves s to path, adding Ext when path has no extension. The
// file is written to a temporary sibling first and renamed into place, so an
// interrupted save never leaves a truncated project behind.
func WriteFile(path string, s *snap.Snap) (string, error) {
	if filepath.Ext(path) == "" {
		path += Ext
	}
	data, err := Export(s)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
