package bandhist

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"github.com/scigolib/bandhist/internal/utils"
)

// SpectralSummary describes the band centre wavelengths of a cube.
type SpectralSummary struct {
	Bands      int
	Min        float64
	Max        float64
	FirstWidth float64 // Spacing between the first two bands.
	LastWidth  float64 // Spacing between the last two bands.
}

// SummarizeWavelengths computes range and edge band widths. A single
// wavelength has zero widths.
func SummarizeWavelengths(w []float64) (SpectralSummary, error) {
	if len(w) == 0 {
		return SpectralSummary{}, errors.New("no wavelengths")
	}
	s := SpectralSummary{
		Bands: len(w),
		Min:   floats.Min(w),
		Max:   floats.Max(w),
	}
	if len(w) > 1 {
		s.FirstWidth = w[1] - w[0]
		s.LastWidth = w[len(w)-1] - w[len(w)-2]
	}
	return s, nil
}

// Wavelengths reads the band centre wavelengths (nanometres).
func (r *Reflectance) Wavelengths() ([]float64, error) {
	ds, err := r.dataset(r.layout.Wavelength)
	if err != nil {
		return nil, utils.KindError("read wavelengths", ErrMalformedMetadata, err)
	}
	w, err := ds.Read()
	if err != nil {
		return nil, utils.KindError("read wavelengths", ErrMalformedMetadata, err)
	}
	return w, nil
}
