package graph

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Arrowhead geometry in pixels.
const (
	arrowLength = 10
	arrowWidth  = 3
)

const (
	fontFamily = "DejaVu Sans, Arial, sans-serif"
	fontSize   = "8pt"
	axisColor  = "#000000"
	labelInset = 4
	fontPixels = 11 // 8pt at 96 dpi.
)

// svgWriter remembers the first write error so drawing code stays linear.
type svgWriter struct {
	w   *bufio.Writer
	err error
}

func (s *svgWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}

	_, s.err = fmt.Fprintf(s.w, format, args...)
}

// Render writes the complete SVG document. Series without points are skipped.
func (r *Renderer) Render(w io.Writer) error {
	sw := &svgWriter{w: bufio.NewWriter(w)}
	width, height := r.opts.Width, r.opts.Height

	sw.printf(`<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	sw.printf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" `+
		`id="%s" width="%s" height="%s" viewBox="0 0 %s %s" font-family="%s" font-size="%s">`+"\n",
		escape(r.id), num(width), num(height), num(width), num(height), fontFamily, fontSize)

	r.renderAxes(sw)

	box, ok := r.Bounds()
	if ok {
		r.renderExtremes(sw, box)

		for i, s := range r.series {
			if len(s.Points) == 0 {
				continue
			}

			r.renderSeries(sw, box, i, s)
		}
	}

	sw.printf("</svg>\n")

	if sw.err != nil {
		return fmt.Errorf("writing svg %s: %w", r.id, sw.err)
	}

	if err := sw.w.Flush(); err != nil {
		return fmt.Errorf("flushing svg %s: %w", r.id, err)
	}

	return nil
}

// renderAxes draws both axes from the origin corner with arrowheads and titles.
func (r *Renderer) renderAxes(sw *svgWriter) {
	w, h, m := r.opts.Width, r.opts.Height, r.opts.Margin
	ox, oy := m, h-m
	xEnd, yEnd := w-m, m

	sw.printf(`<g id="%s-axes" stroke="%s" fill="%s">`+"\n", escape(r.id), axisColor, axisColor)
	sw.printf(`<line x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n", num(ox), num(oy), num(xEnd), num(oy))
	sw.printf(`<polygon points="%s,%s %s,%s %s,%s"/>`+"\n",
		num(xEnd), num(oy), num(xEnd-arrowLength), num(oy-arrowWidth), num(xEnd-arrowLength), num(oy+arrowWidth))
	sw.printf(`<line x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n", num(ox), num(oy), num(ox), num(yEnd))
	sw.printf(`<polygon points="%s,%s %s,%s %s,%s"/>`+"\n",
		num(ox), num(yEnd), num(ox-arrowWidth), num(yEnd+arrowLength), num(ox+arrowWidth), num(yEnd+arrowLength))
	sw.printf("</g>\n")

	if r.opts.XTitle != "" {
		sw.printf(`<text x="%s" y="%s" text-anchor="end">%s</text>`+"\n",
			num(xEnd), num(oy-labelInset), escape(r.opts.XTitle))
	}

	if r.opts.YTitle != "" {
		sw.printf(`<text transform="translate(%s,%s) rotate(-90)" text-anchor="end">%s</text>`+"\n",
			num(ox+labelInset+arrowWidth+fontPixels), num(yEnd+arrowLength), escape(r.opts.YTitle))
	}
}

// renderExtremes labels the minimum and maximum of each axis when formatters are set.
func (r *Renderer) renderExtremes(sw *svgWriter, box Box) {
	w, h, m := r.opts.Width, r.opts.Height, r.opts.Margin

	if r.opts.XFormat != nil {
		sw.printf(`<text x="%s" y="%s" text-anchor="start">%s</text>`+"\n",
			num(m), num(h-m+fontPixels), escape(r.opts.XFormat(box.MinX)))
		sw.printf(`<text x="%s" y="%s" text-anchor="end">%s</text>`+"\n",
			num(w-m), num(h-m+fontPixels), escape(r.opts.XFormat(box.MaxX)))
	}

	if r.opts.YFormat != nil {
		sw.printf(`<text x="%s" y="%s" text-anchor="start">%s</text>`+"\n",
			num(m+labelInset), num(h-m-labelInset), escape(r.opts.YFormat(box.MinY)))
		sw.printf(`<text x="%s" y="%s" text-anchor="start">%s</text>`+"\n",
			num(m+labelInset+arrowWidth), num(m+fontPixels), escape(r.opts.YFormat(box.MaxY)))
	}
}

func (r *Renderer) renderSeries(sw *svgWriter, box Box, i int, s *Series) {
	color := HSVToRGB(float64(i)/float64(len(r.series)), seriesSaturation, seriesValue).Hex()
	pathID := r.seriesID(i)

	var d strings.Builder

	for j, p := range sortedPoints(s.Points) {
		px, py := r.Map(box, p)

		if j == 0 {
			d.WriteString("M ")
		} else {
			d.WriteString(" L ")
		}

		d.WriteString(num(px))
		d.WriteByte(' ')
		d.WriteString(num(py))
	}

	sw.printf(`<path id="%s" d="%s" fill="none" stroke="%s" stroke-width="1"/>`+"\n",
		pathID, d.String(), color)
	sw.printf(`<text fill="%s"><textPath xlink:href="#%s" href="#%s">%s</textPath></text>`+"\n",
		color, pathID, pathID, escape(s.Name))
}

func (r *Renderer) seriesID(i int) string {
	return escape(r.id) + "-series-" + strconv.Itoa(i)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escape(s string) string {
	var b strings.Builder

	// EscapeText only fails on writer errors, which strings.Builder never returns.
	_ = xml.EscapeText(&b, []byte(s))

	return b.String()
}
