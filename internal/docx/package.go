// Package docx loads .docx packages into a structural model and rewrites their formatting.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// DefaultMaxPartBytes bounds the uncompressed size of a single package part.
const DefaultMaxPartBytes = 64 << 20

// Package part names
const (
	partDocument = "word/document.xml"
	partStyles   = "word/styles.xml"
	partTheme    = "word/theme/theme1.xml"
	partCore     = "docProps/core.xml"
)

// opcPackage is the zip container of a document.
type opcPackage struct {
	files    []*zip.File
	byName   map[string]*zip.File
	maxBytes int64
}

func openPackage(data []byte, maxBytes int64) (*opcPackage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &CorruptDocumentError{Message: "not a zip package", Cause: err}
	}
	p := &opcPackage{files: zr.File, byName: make(map[string]*zip.File, len(zr.File)), maxBytes: maxBytes}
	for _, f := range zr.File {
		p.byName[f.Name] = f
	}
	return p, nil
}

func (p *opcPackage) has(name string) bool {
	_, ok := p.byName[name]
	return ok
}

// read returns the uncompressed bytes of a part, refusing parts larger
// than the configured limit.
func (p *opcPackage) read(name string) ([]byte, error) {
	f, ok := p.byName[name]
	if !ok {
		return nil, &CorruptDocumentError{Part: name, Message: "missing part"}
	}
	if p.maxBytes > 0 && f.UncompressedSize64 > uint64(p.maxBytes) {
		return nil, &CorruptDocumentError{Part: name, Message: fmt.Sprintf("part exceeds %d bytes", p.maxBytes)}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &CorruptDocumentError{Part: name, Message: "cannot open part", Cause: err}
	}
	defer func() { _ = rc.Close() }()

	limit := p.maxBytes
	if limit <= 0 {
		limit = DefaultMaxPartBytes
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, &CorruptDocumentError{Part: name, Message: "cannot read part", Cause: err}
	}
	if int64(len(data)) > limit {
		return nil, &CorruptDocumentError{Part: name, Message: fmt.Sprintf("part exceeds %d bytes", limit)}
	}
	return data, nil
}

// write re-packs the package. Parts in replaced are re-compressed; every
// other entry is copied without recompression so it stays byte-identical.
func (p *opcPackage) write(replaced map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range p.files {
		data, ok := replaced[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}
