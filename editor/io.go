package editor

import (
	"codesnap/snapfile"
)

// ExportSnap serializes the current document as a project file.
func (e *Editor) ExportSnap() ([]byte, error) {
	return snapfile.Export(e.doc)
}

// ImportSnap parses data and replaces the document like SetSnap. On error the
// current document, history and selection are left exactly as they were.
func (e *Editor) ImportSnap(data []byte) error {
	s, rep, err := snapfile.Decode(data)
	if err != nil {
		e.log.Warn("import failed", "err", err)
		return err
	}
	for _, w := range rep.Warnings {
		e.log.Warn("import", "version", rep.SourceVersion, "warning", w)
	}
	e.SetSnap(s)
	return nil
}
