package bandhist

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// memCube is an in-memory row-major (row, col, band) cube.
type memCube struct {
	dims     []uint64
	data     []float64
	shapeErr error
	readErr  error
	reads    int
}

func newMemCube(rows, cols, bands int, fn func(r, c, b int) float64) *memCube {
	m := &memCube{
		dims: []uint64{uint64(rows), uint64(cols), uint64(bands)},
		data: make([]float64, rows*cols*bands),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for b := 0; b < bands; b++ {
				m.data[(r*cols+c)*bands+b] = fn(r, c, b)
			}
		}
	}
	return m
}

func (m *memCube) Shape() ([]uint64, error) {
	return m.dims, m.shapeErr
}

func (m *memCube) Read() ([]float64, error) {
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.data, nil
}

func TestExtractBand_SelectsPlane(t *testing.T) {
	cube := newMemCube(3, 4, 5, func(r, c, b int) float64 {
		return float64(r*100 + c*10 + b)
	})

	for band := 1; band <= 5; band++ {
		t.Run(fmt.Sprintf("band %d", band), func(t *testing.T) {
			p, err := ExtractBand(cube, band)
			require.NoError(t, err)
			require.Equal(t, 3, p.Rows)
			require.Equal(t, 4, p.Cols)
			require.Len(t, p.Data, 12)
			for r := 0; r < 3; r++ {
				for c := 0; c < 4; c++ {
					require.Equal(t, float64(r*100+c*10+band-1), p.At(r, c))
				}
			}
		})
	}
}

func TestExtractBand_OutOfRange(t *testing.T) {
	cube := newMemCube(2, 2, 3, func(r, c, b int) float64 { return 1 })

	for _, band := range []int{0, -1, 4, 100} {
		t.Run(fmt.Sprintf("band %d", band), func(t *testing.T) {
			_, err := ExtractBand(cube, band)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrBandOutOfRange)
		})
	}
	require.Zero(t, cube.reads, "out-of-range bands must not touch the data")
}

func TestExtractBand_NotThreeDimensional(t *testing.T) {
	cube := &memCube{dims: []uint64{4, 4}}
	_, err := ExtractBand(cube, 1)
	require.ErrorIs(t, err, ErrMalformedMetadata)
}

func TestExtractBand_ShapeError(t *testing.T) {
	cube := &memCube{shapeErr: errors.New("no dataspace")}
	_, err := ExtractBand(cube, 1)
	require.ErrorIs(t, err, ErrMalformedMetadata)
}

func TestExtractBand_ReadFailures(t *testing.T) {
	readErr := errors.New("disk gone")

	tests := []struct {
		name string
		cube *memCube
		want error
	}{
		{
			name: "read error",
			cube: &memCube{dims: []uint64{2, 2, 2}, readErr: readErr},
			want: readErr,
		},
		{
			name: "short read",
			cube: &memCube{dims: []uint64{2, 2, 2}, data: make([]float64, 7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractBand(tt.cube, 1)
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
			require.Equal(t, 1, tt.cube.reads)
		})
	}
}

// cleanse of a synthetic cube: sentinel cells go missing, others are original/scale.
func TestExtractAndCleanse_SyntheticCube(t *testing.T) {
	const (
		rows, cols, bands = 5, 3, 4
		noData            = -9999.0
		scale             = 10000.0
	)
	cube := newMemCube(rows, cols, bands, func(r, c, b int) float64 {
		if (r+c+b)%3 == 0 {
			return noData
		}
		return float64(r*1000 + c*100 + b)
	})

	for band := 1; band <= bands; band++ {
		raw, err := ExtractBand(cube, band)
		require.NoError(t, err)

		clean := Cleanse(raw, noData, scale)
		require.Equal(t, raw.Rows, clean.Rows)
		require.Equal(t, raw.Cols, clean.Cols)

		for i, v := range raw.Data {
			if v == noData {
				require.True(t, math.IsNaN(clean.Data[i]), "cell %d should be missing", i)
				continue
			}
			require.Equal(t, v/scale, clean.Data[i])
		}
	}
}
