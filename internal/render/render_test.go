// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStyle() *color.Color {
	c := color.New(color.Bold)
	c.EnableColor()
	return c
}

func TestBoldWriter(t *testing.T) {
	style := testStyle()
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{"plain", []string{"no markers"}, "no markers"},
		{"single chunk", []string{"a **b** c"}, "a " + style.Sprint("b") + " c"},
		{"marker split", []string{"a *", "*b*", "* c"}, "a " + style.Sprint("b") + " c"},
		{"span split", []string{"**lim", "its** ok"}, style.Sprint("lim") + style.Sprint("its") + " ok"},
		{"two spans", []string{"**x** and **y**"}, style.Sprint("x") + " and " + style.Sprint("y")},
		{"lone star", []string{"5 * 3"}, "5 * 3"},
		{"trailing star flushed", []string{"note*"}, "note*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewBoldWriter(&buf, style)
			for _, c := range tt.chunks {
				n, err := w.Write([]byte(c))
				require.NoError(t, err)
				assert.Equal(t, len(c), n)
			}
			require.NoError(t, w.Flush())
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestBoldWriterNoColor(t *testing.T) {
	style := color.New(color.Bold)
	style.DisableColor()

	var buf bytes.Buffer
	w := NewBoldWriter(&buf, style)
	_, err := w.Write([]byte("the **main** gap"))
	require.NoError(t, err)
	assert.Equal(t, "the main gap", buf.String())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestBoldWriterError(t *testing.T) {
	w := NewBoldWriter(failWriter{}, nil)
	n, err := w.Write([]byte("x"))
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}
