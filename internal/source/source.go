package source

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// Source supplies the ordered still images a teaser is assembled from.
// Order is significant: clips are rendered in the same order the
// reference images were supplied.
type Source interface {
	Count() int
	Dimensions(index int) (width, height float64, err error)
	Render(index int) (image.Image, error)
	Close() error
}

// FitzPDFSource renders the pages of a PDF (a brand deck, a lookbook) as
// reference stills.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &FitzPDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (f *FitzPDFSource) Count() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) Dimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) Render(index int) (image.Image, error) {
	// go-fitz documents are not safe for concurrent page rendering;
	// open a private handle per call so Render can run in parallel.
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(f.dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
