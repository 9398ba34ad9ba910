// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/arteusai/council-tui/internal/council"
)

// =============================================================================
// PDF LAYOUT CONSTANTS
// =============================================================================

// Page geometry in millimeters (A4 portrait).
const (
	pdfPageWidth    = 210.0
	pdfPageHeight   = 297.0
	pdfMarginLeft   = 15.0
	pdfMarginRight  = 15.0
	pdfMarginTop    = 20.0
	pdfMarginBottom = 20.0

	pdfBodySize   = 11.0
	pdfCodeSize   = 9.0
	pdfLineHeight = 6.0

	// headingBreakFactor is the height a heading reserves when testing for
	// a page break, in body line heights.
	headingBreakFactor = 1.5

	// listIndentStep is the horizontal offset per list nesting level.
	listIndentStep = 6.0
)

// unicodeFamily is the registered name of the loaded Unicode font pair.
const unicodeFamily = "ArteusSans"

// headingSizes maps heading level to font size in points.
var headingSizes = [...]float64{0, 18, 15, 13, 12, 12, 11}

// =============================================================================
// PDF EXPORTER
// =============================================================================

// PDFExporter renders a council turn into a paginated PDF. Page 1 carries
// the title, date, question and final answer; subsequent pages carry the
// per-model responses and the ranking table.
type PDFExporter struct {
	labels Labels
	fonts  *FontPack
}

// NewPDFExporter creates a PDF exporter. The font pack is owned by the
// caller and fetched on first export only.
func NewPDFExporter(opts *Options, fonts *FontPack) *PDFExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &PDFExporter{labels: opts.Labels, fonts: fonts}
}

// FileExtension returns ".pdf".
func (e *PDFExporter) FileExtension() string { return ".pdf" }

// MimeType returns the PDF MIME type.
func (e *PDFExporter) MimeType() string { return "application/pdf" }

// Export renders the turn and returns the document bytes.
func (e *PDFExporter) Export(turn Turn, resolver council.DisplayNameResolver) ([]byte, error) {
	doc := newPDFDoc(e.fonts)

	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	// Page 1: title, date, question, final answer.
	doc.addPage()
	doc.writeHeading(1, e.labels.DocumentTitle)
	doc.writeStyled([]Segment{{Text: ts.Format("2006-01-02 15:04"), Style: StyleItalic}})
	doc.blankGap()

	if turn.Question != "" {
		doc.writeHeading(2, e.labels.Question)
		doc.writeBody(turn.Question)
		doc.blankGap()
	}

	msg := turn.Message
	if msg.Stage3 != nil && msg.Stage3.Response != "" {
		name := council.ResolveDisplayName(resolver, msg.Stage3.Model)
		doc.writeHeading(2, fmt.Sprintf("%s (%s)", e.labels.FinalAnswer, name))
		doc.writeBody(msg.Stage3.Response)
	}

	// Page 2+: per-model responses and the ranking table.
	if len(msg.Stage1) > 0 || (msg.Metadata != nil && len(msg.Metadata.AggregateRankings) > 0) {
		doc.addPage()
	}

	if len(msg.Stage1) > 0 {
		doc.writeHeading(2, e.labels.IndividualResponses)
		for _, resp := range msg.Stage1 {
			doc.writeHeading(3, council.ResolveDisplayName(resolver, resp.Model))
			doc.writeBody(resp.Response)
			doc.blankGap()
		}
	}

	if msg.Metadata != nil && len(msg.Metadata.AggregateRankings) > 0 {
		doc.writeHeading(2, e.labels.RankingTable)
		doc.writeRankingTable(msg.Metadata.AggregateRankings, resolver, e.labels)
	}

	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// DOCUMENT RENDERER
// =============================================================================

// pdfDoc wraps fpdf with a manual cursor so pagination is decided before
// every emitted line rather than by the engine.
type pdfDoc struct {
	pdf     *fpdf.Fpdf
	family  string
	unicode bool
	y       float64
}

func newPDFDoc(fonts *FontPack) *pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	pdf.SetAutoPageBreak(false, 0)

	doc := &pdfDoc{pdf: pdf, family: "Helvetica"}

	if fonts != nil {
		if regular, bold, err := fonts.Load(); err == nil {
			pdf.AddUTF8FontFromBytes(unicodeFamily, "", regular)
			pdf.AddUTF8FontFromBytes(unicodeFamily, "B", bold)
			// No dedicated italic face; reuse the regular one.
			pdf.AddUTF8FontFromBytes(unicodeFamily, "I", regular)
			doc.family = unicodeFamily
			doc.unicode = true
		}
	}
	return doc
}

func (d *pdfDoc) addPage() {
	d.pdf.AddPage()
	d.y = pdfMarginTop
}

// ensure starts a new page when the next element of the given height would
// cross the bottom margin.
func (d *pdfDoc) ensure(height float64) {
	if d.y+height > pdfPageHeight-pdfMarginBottom {
		d.addPage()
	}
}

func (d *pdfDoc) maxLineWidth() float64 {
	return pdfPageWidth - pdfMarginLeft - pdfMarginRight
}

// setFont selects the face for a segment style at the given size.
func (d *pdfDoc) setFont(style Style, size float64) {
	switch style {
	case StyleBold:
		d.pdf.SetFont(d.family, "B", size)
	case StyleItalic:
		d.pdf.SetFont(d.family, "I", size)
	case StyleCode:
		d.pdf.SetFont("Courier", "", size)
	default:
		d.pdf.SetFont(d.family, "", size)
	}
}

// measure returns a MeasureFunc bound to the given body size.
func (d *pdfDoc) measure(size float64) MeasureFunc {
	return func(text string, style Style) float64 {
		d.setFont(style, size)
		return d.pdf.GetStringWidth(text)
	}
}

// emitLine draws one wrapped line at the cursor and advances it.
func (d *pdfDoc) emitLine(line WrappedLine, x, size, lineHeight float64) {
	d.ensure(lineHeight)
	d.pdf.SetXY(x, d.y)
	for _, seg := range line.Segments {
		if seg.Text == "" {
			continue
		}
		d.setFont(seg.Style, size)
		w := d.pdf.GetStringWidth(seg.Text)
		d.pdf.CellFormat(w, lineHeight, seg.Text, "", 0, "L", false, 0, "")
	}
	d.y += lineHeight
}

// writeStyled wraps and draws segments at body size.
func (d *pdfDoc) writeStyled(segments []Segment) {
	for _, line := range WrapSegments(segments, d.maxLineWidth(), d.measure(pdfBodySize)) {
		d.emitLine(line, pdfMarginLeft, pdfBodySize, pdfLineHeight)
	}
}

// writeHeading draws a heading; the page-break test reserves extra height
// so a heading is never orphaned at the very bottom of a page.
func (d *pdfDoc) writeHeading(level int, text string) {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	size := headingSizes[level]
	lineHeight := pdfLineHeight * size / pdfBodySize

	d.ensure(pdfLineHeight * headingBreakFactor)

	segments := TokenizeInline(text)
	for i := range segments {
		segments[i].Style = StyleBold
	}
	for _, line := range WrapSegments(segments, d.maxLineWidth(), d.measure(size)) {
		d.emitLine(line, pdfMarginLeft, size, lineHeight)
	}
	d.y += pdfLineHeight / 2
}

// blankGap advances the cursor half a line, matching a blank source line.
func (d *pdfDoc) blankGap() {
	d.y += pdfLineHeight / 2
}

// writeBody renders a markdown body: headings, lists, fenced code and
// paragraphs, wrapped and paginated line by line.
func (d *pdfDoc) writeBody(body string) {
	for _, block := range ClassifyLines(body) {
		switch block.Kind {
		case BlockBlank:
			d.blankGap()

		case BlockHeading:
			d.writeHeading(block.Level+2, block.Text) // nested under section headings

		case BlockCode:
			// Verbatim, fixed smaller font, no inline styling.
			d.emitLine(WrappedLine{Segments: []Segment{{Text: block.Text, Style: StyleCode}}},
				pdfMarginLeft, pdfCodeSize, pdfLineHeight)

		case BlockBullet:
			d.writeListItem("• ", block)

		case BlockNumbered:
			d.writeListItem(block.Marker+" ", block)

		default:
			d.writeStyled(TokenizeInline(block.Text))
		}
	}
}

// writeListItem draws a list line with its marker; wrapped continuation
// lines align under the item text.
func (d *pdfDoc) writeListItem(marker string, block Block) {
	x := pdfMarginLeft + float64(block.Indent)*listIndentStep
	measure := d.measure(pdfBodySize)
	markerWidth := measure(marker, StyleNormal)
	maxWidth := d.maxLineWidth() - float64(block.Indent)*listIndentStep - markerWidth

	lines := WrapSegments(TokenizeInline(block.Text), maxWidth, measure)
	for i, line := range lines {
		if i == 0 {
			d.ensure(pdfLineHeight)
			d.pdf.SetXY(x, d.y)
			d.setFont(StyleNormal, pdfBodySize)
			d.pdf.CellFormat(markerWidth, pdfLineHeight, marker, "", 0, "L", false, 0, "")
			for _, seg := range line.Segments {
				if seg.Text == "" {
					continue
				}
				d.setFont(seg.Style, pdfBodySize)
				w := d.pdf.GetStringWidth(seg.Text)
				d.pdf.CellFormat(w, pdfLineHeight, seg.Text, "", 0, "L", false, 0, "")
			}
			d.y += pdfLineHeight
			continue
		}
		d.emitLine(line, x+markerWidth, pdfBodySize, pdfLineHeight)
	}
}

// writeRankingTable draws the aggregate table. Numeric rows come first,
// sorted ascending; non-numeric averages render as "N/A" at the end.
func (d *pdfDoc) writeRankingTable(rankings []council.AggregateRanking, resolver council.DisplayNameResolver, labels Labels) {
	numeric := council.SortedAggregate(rankings)
	rows := make([]council.AggregateRanking, 0, len(rankings))
	rows = append(rows, numeric...)
	for _, r := range rankings {
		if !r.AverageRank.Valid {
			rows = append(rows, r)
		}
	}

	const colModel, colAverage, colVotes = 90.0, 50.0, 30.0

	d.ensure(pdfLineHeight * 2)
	d.pdf.SetXY(pdfMarginLeft, d.y)
	d.setFont(StyleBold, pdfBodySize)
	d.pdf.CellFormat(colModel, pdfLineHeight, labels.ColumnModel, "B", 0, "L", false, 0, "")
	d.pdf.CellFormat(colAverage, pdfLineHeight, labels.ColumnAverage, "B", 0, "L", false, 0, "")
	d.pdf.CellFormat(colVotes, pdfLineHeight, labels.ColumnVotes, "B", 0, "L", false, 0, "")
	d.y += pdfLineHeight

	for _, row := range rows {
		d.ensure(pdfLineHeight)
		d.pdf.SetXY(pdfMarginLeft, d.y)
		d.setFont(StyleNormal, pdfBodySize)
		d.pdf.CellFormat(colModel, pdfLineHeight, council.ResolveDisplayName(resolver, row.Model), "", 0, "L", false, 0, "")
		d.pdf.CellFormat(colAverage, pdfLineHeight, row.AverageRank.String(), "", 0, "L", false, 0, "")
		d.pdf.CellFormat(colVotes, pdfLineHeight, fmt.Sprintf("%d", row.RankingsCount), "", 0, "L", false, 0, "")
		d.y += pdfLineHeight
	}
}
