package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// PDFOptions controls PDF output
type PDFOptions struct {
	// Compress deflates page streams; disable to inspect the raw content
	Compress bool
}

// DefaultPDFOptions is used for report artifacts
var DefaultPDFOptions = PDFOptions{Compress: true}

const pdfFont = "Helvetica"

// The core PDF fonts have no rupee glyph
var pdfCurrency = strings.NewReplacer(rupee, "Rs.")

// PDF renders the document to an A4 PDF
func PDF(doc Document, opts PDFOptions) ([]byte, error) {
	source := []byte(pdfCurrency.Replace(Markdown(doc)))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(opts.Compress)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("stock-analyzer", true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	r := &pdfRenderer{
		pdf:       pdf,
		source:    source,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		size:      10,
	}
	r.updateFont()

	tree := goldmark.New().Parser().Parse(text.NewReader(source))
	if err := ast.Walk(tree, r.walk); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfRenderer walks the markdown AST and draws it with fpdf. Paragraphs
// before the first section heading form the centred report header.
type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	translate func(string) string
	size      float64
	bold      bool
	inSection bool
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style = "B"
	}
	r.pdf.SetFont(pdfFont, style, r.size)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		return r.handleHeading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		return r.handleParagraph(n.(*ast.Paragraph), entering)
	case ast.KindText:
		if entering {
			r.pdf.Write(5, r.textOf(n))
		}
	case ast.KindEmphasis:
		if n.(*ast.Emphasis).Level == 2 {
			r.bold = entering
			r.updateFont()
		}
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleHeading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	title := r.textOf(n)
	if n.Level == 1 {
		r.pdf.SetFont(pdfFont, "B", 20)
		r.pdf.SetTextColor(0, 51, 102)
		r.pdf.WriteAligned(0, 10, title, "C")
		r.pdf.Ln(14)
	} else {
		r.inSection = true
		r.pdf.Ln(4)
		r.pdf.SetFont(pdfFont, "B", 13)
		r.pdf.SetTextColor(11, 83, 148)
		r.pdf.Write(7, title)
		r.pdf.Ln(9)
	}

	r.pdf.SetTextColor(0, 0, 0)
	r.updateFont()
	return ast.WalkSkipChildren, nil
}

func (r *pdfRenderer) handleParagraph(n *ast.Paragraph, entering bool) (ast.WalkStatus, error) {
	if r.inSection {
		if !entering {
			r.pdf.Ln(6)
		}
		return ast.WalkContinue, nil
	}

	if entering {
		r.pdf.SetFont(pdfFont, "", 11)
		r.pdf.SetTextColor(128, 128, 128)
		r.pdf.WriteAligned(0, 6, r.textOf(n), "C")
		r.pdf.Ln(6)
		r.pdf.SetTextColor(0, 0, 0)
		r.updateFont()
	}
	return ast.WalkSkipChildren, nil
}

// textOf returns the unescaped, PDF-encoded text beneath n
func (r *pdfRenderer) textOf(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			sb.Write(util.UnescapePunctuations(t.Segment.Value(r.source)))
		}
		return ast.WalkContinue, nil
	})
	return r.translate(sb.String())
}
