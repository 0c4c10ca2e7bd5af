package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gbytes "github.com/labstack/gommon/bytes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Format is an export file format.
type Format string

const (
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatExcel, FormatPDF}

// ParseFormats accepts "xlsx", "pdf", "all" or a comma-separated list.
func ParseFormats(s string) ([]Format, error) {
	if s == "" || s == "all" {
		return Formats, nil
	}
	var out []Format
	for _, part := range strings.Split(s, ",") {
		switch f := Format(strings.ToLower(strings.TrimSpace(part))); f {
		case FormatExcel, FormatPDF:
			out = append(out, f)
		case "excel":
			out = append(out, FormatExcel)
		default:
			return nil, fmt.Errorf("unknown export format %q", part)
		}
	}
	return out, nil
}

// Write renders r in format f.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatExcel:
		return WriteExcel(w, r)
	case FormatPDF:
		return WritePDF(w, r)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// WriteAll renders every requested format into dir concurrently and
// returns the written paths in format order.
func WriteAll(ctx context.Context, dir string, r Report, formats []Format, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	paths := make([]string, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			var buf bytes.Buffer
			if err := Write(&buf, f, r); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, r.Filename(f))
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", f, err)
			}
			log.Info("report exported",
				zap.String("format", string(f)),
				zap.String("path", path),
				zap.String("size", gbytes.Format(int64(buf.Len()))))
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
