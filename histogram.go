package bandhist

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/vg"

	"github.com/scigolib/bandhist/internal/utils"
)

// DefaultBins is the bin count used when none is configured.
const DefaultBins = 50

// Histogram is a fixed-bin 1-D histogram of band values.
type Histogram struct {
	h       *hbook.H1D
	entries int
}

// PlotOptions controls how a histogram is drawn.
type PlotOptions struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length // Zero or negative: derived from Width.
	Fill   color.Color
}

// DefaultPlotOptions returns the options used by mk_hist when nothing is configured.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		Title:  "Histogram of Band Reflectance",
		XLabel: "Reflectance",
		YLabel: "Frequency",
		Width:  16 * vg.Centimeter,
		Height: 12 * vg.Centimeter,
		Fill:   color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	}
}

// NewHistogram bins values into bins equal-width bins spanning [min, max].
//
// The upper edge is nudged past the maximum so that every value lands in a
// bin; a degenerate range (all values equal) is widened by 0.5 on each side.
// An empty input yields empty bins over [0, 1].
func NewHistogram(values []float64, bins int) (*Histogram, error) {
	if bins < 1 {
		return nil, fmt.Errorf("bin count must be positive, got %d", bins)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("value %d is not finite (%v)", i, v)
		}
	}

	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, hi = floats.Min(values), floats.Max(values)
		if lo == hi {
			lo, hi = lo-0.5, hi+0.5
		} else {
			hi = math.Nextafter(hi, math.Inf(1))
		}
	}

	h := hbook.NewH1D(bins, lo, hi)
	for _, v := range values {
		h.Fill(v, 1)
	}
	return &Histogram{h: h, entries: len(values)}, nil
}

// Bins returns the number of bins.
func (h *Histogram) Bins() int {
	return h.h.Len()
}

// Counts returns the per-bin counts.
func (h *Histogram) Counts() []float64 {
	out := make([]float64, h.h.Len())
	for i := range out {
		_, out[i] = h.h.XY(i)
	}
	return out
}

// Entries returns the number of values the histogram was built from.
func (h *Histogram) Entries() int {
	return h.entries
}

// Range returns the lower and upper edges of the binned range.
func (h *Histogram) Range() (lo, hi float64) {
	return h.h.XMin(), h.h.XMax()
}

// Save draws the histogram and writes it to path, overwriting any existing
// file. The image format follows the file extension.
func (h *Histogram) Save(path string, opts PlotOptions) error {
	if err := checkImageExt(path); err != nil {
		return utils.KindError("save histogram", ErrWriteFailed, err)
	}

	p := hplot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel

	hh := hplot.NewH1D(h.h)
	if opts.Fill != nil {
		hh.FillColor = opts.Fill
	}
	p.Add(hh, hplot.NewGrid())

	width := opts.Width
	if width <= 0 {
		width = DefaultPlotOptions().Width
	}
	height := opts.Height
	if height <= 0 {
		height = -1
	}

	if err := p.Save(width, height, path); err != nil {
		return utils.KindError("save histogram", ErrWriteFailed, err)
	}
	return nil
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".svg": true,
	".pdf": true, ".eps": true, ".tif": true, ".tiff": true,
}

func checkImageExt(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return errors.New("output path has no extension; cannot infer image format")
	}
	if !imageExts[ext] {
		return fmt.Errorf("unsupported image format %q", ext)
	}
	if dir := filepath.Dir(path); dir != "" {
		fi, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
	}
	return nil
}
