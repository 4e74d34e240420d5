// Package testfile writes small synthetic NEON-style reflectance files for tests.
package testfile

import (
	"errors"
	"fmt"
	"path"

	"github.com/scigolib/hdf5"
)

// Reflectance describes a synthetic reflectance file.
type Reflectance struct {
	Site string // Top-level group, e.g. "SERC".

	Rows, Cols, Bands int
	// Data is row-major (row, col, band); len must be Rows*Cols*Bands.
	Data []int32

	ScaleFactor float64
	NoDataValue float64
	MapInfo     string
	Wavelengths []float32 // Optional; written when non-empty.
	SkipMapInfo bool
	SkipScale   bool
	SkipNoData  bool
}

// NEON returns a fixture shaped like a NEON AOP file for site with the given cube.
func NEON(site string, rows, cols, bands int, fn func(r, c, b int) int32) Reflectance {
	data := make([]int32, rows*cols*bands)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for b := 0; b < bands; b++ {
				data[(r*cols+c)*bands+b] = fn(r, c, b)
			}
		}
	}
	wl := make([]float32, bands)
	for b := range wl {
		wl[b] = 383.5 + 5*float32(b)
	}
	return Reflectance{
		Site:        site,
		Rows:        rows,
		Cols:        cols,
		Bands:       bands,
		Data:        data,
		ScaleFactor: 10000,
		NoDataValue: -9999,
		MapInfo:     "UTM,1.000,1.000,368005.000,4307000.000,1.0000000000e+00,1.0000000000e+00,18,North,WGS-84,units=Meters",
		Wavelengths: wl,
	}
}

// Write creates filename (truncating it) with the layout
// /<Site>/Reflectance/{Reflectance_Data, Metadata/Coordinate_System/Map_Info, Metadata/Spectral_Data/Wavelength}.
func Write(filename string, fx Reflectance) (err error) {
	if len(fx.Data) != fx.Rows*fx.Cols*fx.Bands {
		return fmt.Errorf("data has %d values, want %d", len(fx.Data), fx.Rows*fx.Cols*fx.Bands)
	}

	fw, err := hdf5.CreateForWrite(filename, hdf5.CreateTruncate)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, fw.Close())
	}()

	site := "/" + fx.Site
	refl := path.Join(site, "Reflectance")
	meta := path.Join(refl, "Metadata")
	for _, g := range []string{
		site,
		refl,
		meta,
		path.Join(meta, "Coordinate_System"),
		path.Join(meta, "Spectral_Data"),
	} {
		if _, err := fw.CreateGroup(g); err != nil {
			return fmt.Errorf("create group %s: %w", g, err)
		}
	}

	dims := []uint64{uint64(fx.Rows), uint64(fx.Cols), uint64(fx.Bands)}
	ds, err := fw.CreateDataset(path.Join(refl, "Reflectance_Data"), hdf5.Int32, dims)
	if err != nil {
		return fmt.Errorf("create cube: %w", err)
	}
	if err := ds.Write(fx.Data); err != nil {
		return fmt.Errorf("write cube: %w", err)
	}
	if !fx.SkipScale {
		if err := ds.WriteAttribute("Scale_Factor", fx.ScaleFactor); err != nil {
			return fmt.Errorf("write Scale_Factor: %w", err)
		}
	}
	if !fx.SkipNoData {
		if err := ds.WriteAttribute("Data_Ignore_Value", fx.NoDataValue); err != nil {
			return fmt.Errorf("write Data_Ignore_Value: %w", err)
		}
	}

	if !fx.SkipMapInfo {
		mi, err := fw.CreateDataset(path.Join(meta, "Coordinate_System", "Map_Info"), hdf5.String,
			[]uint64{1}, hdf5.WithStringSize(uint32(len(fx.MapInfo)+1)))
		if err != nil {
			return fmt.Errorf("create Map_Info: %w", err)
		}
		if err := mi.Write([]string{fx.MapInfo}); err != nil {
			return fmt.Errorf("write Map_Info: %w", err)
		}
	}

	if len(fx.Wavelengths) > 0 {
		wl, err := fw.CreateDataset(path.Join(meta, "Spectral_Data", "Wavelength"), hdf5.Float32,
			[]uint64{uint64(len(fx.Wavelengths))})
		if err != nil {
			return fmt.Errorf("create Wavelength: %w", err)
		}
		if err := wl.Write(fx.Wavelengths); err != nil {
			return fmt.Errorf("write Wavelength: %w", err)
		}
	}

	return nil
}
