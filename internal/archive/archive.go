// Package archive bundles rendered report documents into a zip file.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/BRMReports/internal/core"
)

// Packager implements core.Packager.
type Packager struct {
	// Now stamps every entry's modification time. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Packager.
func New() *Packager {
	return &Packager{Now: time.Now}
}

// Package writes docs to w as a zip archive, one deflated entry per
// document in the given order. Entry names must be unique.
func (p *Packager) Package(w io.Writer, docs []core.Document) error {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	modified := now()

	zw := zip.NewWriter(w)
	seen := make(map[string]bool, len(docs))

	for _, d := range docs {
		if d.Name == "" {
			return errors.New("archive: document without a name")
		}
		if seen[d.Name] {
			return fmt.Errorf("archive: duplicate entry %q", d.Name)
		}
		seen[d.Name] = true

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     d.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("archive: create %q: %w", d.Name, err)
		}
		if _, err := fw.Write(d.Data); err != nil {
			return fmt.Errorf("archive: write %q: %w", d.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: close: %w", err)
	}
	return nil
}
