// Package parser decodes sheet documents from JSON, YAML and XLSX files.
package parser

// Excel stores column widths in characters of the default font. At the
// default 11pt Calibri one character is 7 pixels, plus 5 pixels of padding.
const (
	pixelsPerChar   = 7
	columnPaddingPx = 5
)

// DefaultColumnWidth is the pixel width used when a width is unknown.
const DefaultColumnWidth = 150

// CharsToPixels converts an Excel column width to pixels.
func CharsToPixels(chars float64) int {
	if chars <= 0 {
		return DefaultColumnWidth
	}
	return int(chars*pixelsPerChar) + columnPaddingPx
}

// PixelsToChars converts a pixel width to an Excel column width.
func PixelsToChars(px int) float64 {
	if px <= columnPaddingPx {
		return float64(DefaultColumnWidth-columnPaddingPx) / pixelsPerChar
	}
	return float64(px-columnPaddingPx) / pixelsPerChar
}
