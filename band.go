package bandhist

import (
	"fmt"

	"github.com/scigolib/bandhist/internal/utils"
)

// Cube is a 3-D (row, column, band) reflectance array. Read returns every
// element in row-major order, so band b of cell (r, c) sits at
// (r*cols+c)*bands+b. *hdf5.Dataset satisfies Read; Shape is supplied by the
// adapter returned from Reflectance.Cube.
type Cube interface {
	Shape() ([]uint64, error)
	Read() ([]float64, error)
}

// ExtractBand reads the 1-based band from cube as a float64 plane.
func ExtractBand(cube Cube, band int) (*Plane, error) {
	dims, err := cube.Shape()
	if err != nil {
		return nil, utils.KindError("extract band", ErrMalformedMetadata, err)
	}
	if len(dims) != 3 {
		return nil, utils.KindError("extract band", ErrMalformedMetadata,
			fmt.Errorf("reflectance cube has %d dimensions, want 3 (row, column, band)", len(dims)))
	}

	rows, cols, bands := dims[0], dims[1], dims[2]
	if band < 1 || uint64(band) > bands {
		return nil, utils.KindError("extract band", ErrBandOutOfRange,
			fmt.Errorf("band %d not in [1, %d]", band, bands))
	}

	n, err := utils.ElementCount(rows, cols)
	if err != nil {
		return nil, utils.WrapError("extract band", err)
	}
	total, err := utils.ElementCount(rows, cols, bands)
	if err != nil {
		return nil, utils.WrapError("extract band", err)
	}

	// Hyperslab reads along the band axis are not reliable in the HDF5
	// reader, so the whole cube is read and the band strided out.
	all, err := cube.Read()
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("read band %d", band), err)
	}
	if len(all) != total {
		return nil, utils.WrapError(fmt.Sprintf("read band %d", band),
			fmt.Errorf("got %d values, want %d", len(all), total))
	}

	stride := int(bands)
	values := make([]float64, n)
	for i, j := 0, band-1; i < n; i, j = i+1, j+stride {
		values[i] = all[j]
	}

	return &Plane{Rows: int(rows), Cols: int(cols), Data: values}, nil
}
