package pdfcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "lovedu_client/internal/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const (
	DefaultMaxBytes = 50 << 20
	previewLength   = 200
)

// Info describes a file that passed the upload checks.
type Info struct {
	Path    string
	Name    string
	Size    int64
	MIME    string
	Pages   int
	Preview string
}

// Checker validates admin uploads before they leave the machine: PDF by content, not extension,
// within the size cap, and parseable.
type Checker struct {
	MaxBytes int64
}

func NewChecker(maxBytes int64) *Checker {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Checker{MaxBytes: maxBytes}
}

func (c *Checker) Check(path string) (*Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Cannot read %s", filepath.Base(path)))
	}
	if stat.IsDir() {
		return nil, apperrors.NewValidationError("Select a file first")
	}
	if stat.Size() == 0 {
		return nil, apperrors.NewValidationError("File is empty")
	}
	if stat.Size() > c.MaxBytes {
		return nil, apperrors.NewValidationError(fmt.Sprintf("File exceeds the maximum size of %dMB", c.MaxBytes>>20))
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Cannot read %s", filepath.Base(path)))
	}
	if !mtype.Is("application/pdf") {
		return nil, apperrors.NewValidationError("Only PDF files are allowed")
	}

	pages, preview, err := inspect(path)
	if err != nil {
		return nil, apperrors.NewValidationError("File is not a readable PDF")
	}

	return &Info{
		Path:    path,
		Name:    filepath.Base(path),
		Size:    stat.Size(),
		MIME:    mtype.String(),
		Pages:   pages,
		Preview: preview,
	}, nil
}

// inspect counts pages and pulls a short text preview. The parser panics on some damaged
// cross-reference tables, which is reported as an ordinary error.
func inspect(path string) (pages int, preview string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("failed to open PDF: %v", err)
	}
	defer f.Close()

	pages = r.NumPage()
	var content strings.Builder
	for pageIndex := 1; pageIndex <= pages && content.Len() < previewLength; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		content.WriteString(strings.TrimSpace(text))
		content.WriteString(" ")
	}

	return pages, apperrors.Truncate(strings.TrimSpace(content.String()), previewLength), nil
}
