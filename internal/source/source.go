// Package source loads the background cover for a render job. A cover may
// arrive as raw compressed bytes from an upstream generator, as a file on
// disk, or as a page of a PDF document.
package source

import (
	"errors"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// ErrImageDecode reports an undecodable cover. Fatal: there is no fallback image.
var ErrImageDecode = errors.New("cover image decode failed")

type Source interface {
	Image() (image.Image, error)
	Close() error
}

// PDFSource renders one page of a PDF document as the cover.
type PDFSource struct {
	doc  *fitz.Document
	page int
	dpi  float64
}

func NewPDFSource(path string, page int, dpi float64) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if page < 0 || page >= doc.NumPage() {
		doc.Close()
		return nil, fmt.Errorf("pdf page %d out of range (document has %d)", page, doc.NumPage())
	}
	return &PDFSource{doc: doc, page: page, dpi: dpi}, nil
}

func (s *PDFSource) Image() (image.Image, error) {
	return s.doc.ImageDPI(s.page, s.dpi)
}

func (s *PDFSource) Close() error {
	return s.doc.Close()
}
