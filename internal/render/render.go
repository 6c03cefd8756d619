// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes streamed answer text to a terminal.
package render

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

const marker = "**"

// BoldWriter renders markdown **bold** spans with a terminal style. Markers
// may be split across writes; the open/closed state carries over. Call Flush
// after the last write.
type BoldWriter struct {
	w       io.Writer
	style   *color.Color
	bold    bool
	pending bool // last write ended with a lone '*'
}

// NewBoldWriter wraps w. A nil style uses bold.
func NewBoldWriter(w io.Writer, style *color.Color) *BoldWriter {
	if style == nil {
		style = color.New(color.Bold)
	}
	return &BoldWriter{w: w, style: style}
}

// Write renders p. It reports len(p) on success regardless of how many
// bytes the markers and styling added or removed.
func (b *BoldWriter) Write(p []byte) (int, error) {
	s := string(p)
	if b.pending {
		s = "*" + s
		b.pending = false
	}

	var out strings.Builder
	for {
		i := strings.Index(s, marker)
		if i < 0 {
			break
		}
		b.emit(&out, s[:i])
		b.bold = !b.bold
		s = s[i+len(marker):]
	}
	if strings.HasSuffix(s, "*") {
		b.pending = true
		s = s[:len(s)-1]
	}
	b.emit(&out, s)

	if _, err := io.WriteString(b.w, out.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Flush writes a held-back '*' and resets the writer.
func (b *BoldWriter) Flush() error {
	var out strings.Builder
	if b.pending {
		b.emit(&out, "*")
	}
	b.pending, b.bold = false, false
	_, err := io.WriteString(b.w, out.String())
	return err
}

func (b *BoldWriter) emit(out *strings.Builder, text string) {
	if text == "" {
		return
	}
	if b.bold {
		out.WriteString(b.style.Sprint(text))
		return
	}
	out.WriteString(text)
}

// Heading styles section titles such as "Sources".
var Heading = color.New(color.Bold, color.FgCyan)

// Notice styles status lines such as the boolean query banner.
var Notice = color.New(color.FgYellow)
