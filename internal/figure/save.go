package figure

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Render encodes p at the given size in one of the formats understood by
// plot.WriterTo (svg, pdf, eps, png, ...). The layout fills the whole canvas.
func Render(p *plot.Plot, width, height vg.Length, format string) ([]byte, error) {
	w, err := p.WriterTo(width, height, strings.ToLower(format))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s writer: %w", format, err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// Save writes p to dir/basename.<format> for every format and returns the
// paths written. All encodings are rendered before any file is created, and
// files already written are removed if a later write fails.
func Save(p *plot.Plot, width, height vg.Length, dir, basename string, formats []string) ([]string, error) {
	rendered := make([][]byte, len(formats))
	for i, format := range formats {
		data, err := Render(p, width, height, format)
		if err != nil {
			return nil, err
		}
		rendered[i] = data
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var written []string
	for i, format := range formats {
		path := filepath.Join(dir, basename+"."+strings.ToLower(format))
		if err := os.WriteFile(path, rendered[i], 0o644); err != nil {
			for _, w := range written {
				os.Remove(w)
			}
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}

	return written, nil
}
