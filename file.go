// Package bandhist reads one band of a NEON-style hyperspectral reflectance
// HDF5 file, applies the no-data sentinel and scale factor, and renders a
// histogram of the result.
//
// The expected file layout is
//
//	/<Site>/Reflectance/Reflectance_Data                     (rows, cols, bands)
//	/<Site>/Reflectance/Metadata/Coordinate_System/Map_Info  comma-delimited string
//	/<Site>/Reflectance/Metadata/Spectral_Data/Wavelength    one value per band
//
// with Scale_Factor and Data_Ignore_Value attributes on Reflectance_Data.
// All names can be changed through Layout.
package bandhist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/scigolib/hdf5"

	"github.com/scigolib/bandhist/internal/utils"
)

// Layout names the groups, datasets and attributes read from the file.
// Paths other than Site and Reflectance are relative to the reflectance group.
type Layout struct {
	Site        string `yaml:"site"` // Empty: first top-level group holding Reflectance.
	Reflectance string `yaml:"reflectance_group"`
	Data        string `yaml:"data_dataset"`
	MapInfo     string `yaml:"map_info_dataset"`
	Wavelength  string `yaml:"wavelength_dataset"`
	ScaleAttr   string `yaml:"scale_attribute"`
	NoDataAttr  string `yaml:"no_data_attribute"`
}

// DefaultLayout returns the NEON AOP reflectance layout.
func DefaultLayout() Layout {
	return Layout{
		Reflectance: "Reflectance",
		Data:        "Reflectance_Data",
		MapInfo:     "Metadata/Coordinate_System/Map_Info",
		Wavelength:  "Metadata/Spectral_Data/Wavelength",
		ScaleAttr:   "Scale_Factor",
		NoDataAttr:  "Data_Ignore_Value",
	}
}

// OpenOption configures Open.
type OpenOption func(*Layout)

// WithLayout replaces the whole layout. Empty fields keep their defaults.
func WithLayout(l Layout) OpenOption {
	return func(dst *Layout) {
		if l.Site != "" {
			dst.Site = l.Site
		}
		if l.Reflectance != "" {
			dst.Reflectance = l.Reflectance
		}
		if l.Data != "" {
			dst.Data = l.Data
		}
		if l.MapInfo != "" {
			dst.MapInfo = l.MapInfo
		}
		if l.Wavelength != "" {
			dst.Wavelength = l.Wavelength
		}
		if l.ScaleAttr != "" {
			dst.ScaleAttr = l.ScaleAttr
		}
		if l.NoDataAttr != "" {
			dst.NoDataAttr = l.NoDataAttr
		}
	}
}

// WithSite selects the top-level site group by name (e.g. "SERC").
func WithSite(site string) OpenOption {
	return func(dst *Layout) {
		dst.Site = site
	}
}

// Reflectance is an open reflectance file with its site group and cube located.
type Reflectance struct {
	file   *hdf5.File
	layout Layout
	group  *hdf5.Group
	data   *hdf5.Dataset
}

// Open opens filename read-only and locates the reflectance cube.
func Open(filename string, opts ...OpenOption) (*Reflectance, error) {
	layout := DefaultLayout()
	for _, opt := range opts {
		opt(&layout)
	}

	if _, err := os.Stat(filename); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, utils.KindError("open "+filename, ErrFileNotFound, err)
		}
		return nil, utils.WrapError("open "+filename, err)
	}

	f, err := hdf5.Open(filename)
	if err != nil {
		return nil, utils.WrapError("open "+filename, err)
	}

	r := &Reflectance{file: f, layout: layout}
	if err := r.locate(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reflectance) locate() error {
	root := r.file.Root()

	if r.layout.Site == "" {
		site, err := discoverSite(root, r.layout.Reflectance)
		if err != nil {
			return utils.KindError("locate site group", ErrMalformedMetadata, err)
		}
		r.layout.Site = site
	}

	obj, err := lookup(root, path.Join(r.layout.Site, r.layout.Reflectance))
	if err != nil {
		return utils.KindError("locate reflectance group", ErrMalformedMetadata, err)
	}
	g, ok := obj.(*hdf5.Group)
	if !ok {
		return utils.KindError("locate reflectance group", ErrMalformedMetadata,
			fmt.Errorf("%s/%s is not a group", r.layout.Site, r.layout.Reflectance))
	}
	r.group = g

	ds, err := r.dataset(r.layout.Data)
	if err != nil {
		return utils.KindError("locate reflectance data", ErrMalformedMetadata, err)
	}
	r.data = ds
	return nil
}

// discoverSite returns the first top-level group that contains a child named reflectance.
func discoverSite(root *hdf5.Group, reflectance string) (string, error) {
	for _, child := range root.Children() {
		g, ok := child.(*hdf5.Group)
		if !ok {
			continue
		}
		if _, err := lookup(g, reflectance); err == nil {
			return baseName(g.Name()), nil
		}
	}
	return "", fmt.Errorf("no top-level group contains %q", reflectance)
}

// lookup resolves a slash-separated path relative to g.
func lookup(g *hdf5.Group, rel string) (hdf5.Object, error) {
	var cur hdf5.Object = g
	walked := ""
	for _, part := range strings.Split(strings.Trim(rel, "/"), "/") {
		if part == "" {
			continue
		}
		grp, ok := cur.(*hdf5.Group)
		if !ok {
			return nil, fmt.Errorf("%q is not a group", walked)
		}
		var next hdf5.Object
		for _, child := range grp.Children() {
			if baseName(child.Name()) == part {
				next = child
				break
			}
		}
		walked = path.Join(walked, part)
		if next == nil {
			return nil, fmt.Errorf("%q not found", walked)
		}
		cur = next
	}
	return cur, nil
}

// baseName strips any path prefix the library leaves on object names.
func baseName(name string) string {
	return path.Base(strings.TrimSuffix(name, "/"))
}

func (r *Reflectance) dataset(rel string) (*hdf5.Dataset, error) {
	obj, err := lookup(r.group, rel)
	if err != nil {
		return nil, err
	}
	ds, ok := obj.(*hdf5.Dataset)
	if !ok {
		return nil, fmt.Errorf("%q is not a dataset", rel)
	}
	return ds, nil
}

// Close closes the underlying file. It is safe to call Close multiple times.
func (r *Reflectance) Close() error {
	return r.file.Close()
}

// File returns the underlying HDF5 file.
func (r *Reflectance) File() *hdf5.File {
	return r.file
}

// Site returns the site group name, discovered or configured.
func (r *Reflectance) Site() string {
	return r.layout.Site
}

// Cube returns the reflectance cube.
func (r *Reflectance) Cube() Cube {
	return datasetCube{r.data}
}

// Shape returns the cube dimensions (rows, cols, bands).
func (r *Reflectance) Shape() ([]uint64, error) {
	return r.Cube().Shape()
}

// Band extracts the 1-based band as a raw (uncleansed) plane.
func (r *Reflectance) Band(band int) (*Plane, error) {
	return ExtractBand(r.Cube(), band)
}

// MapInfo reads and parses the Map_Info string.
func (r *Reflectance) MapInfo() (MapInfo, error) {
	ds, err := r.dataset(r.layout.MapInfo)
	if err != nil {
		return MapInfo{}, utils.KindError("read map info", ErrMalformedMetadata, err)
	}
	strs, err := ds.ReadStrings()
	if err != nil {
		return MapInfo{}, utils.KindError("read map info", ErrMalformedMetadata, err)
	}
	if len(strs) == 0 {
		return MapInfo{}, utils.KindError("read map info", ErrMalformedMetadata,
			errors.New("map info dataset is empty"))
	}
	return ParseMapInfo(strs[0])
}

// Extent computes the spatial extent from Map_Info and the cube's row and column counts.
func (r *Reflectance) Extent() (MapInfo, Extent, error) {
	mi, err := r.MapInfo()
	if err != nil {
		return MapInfo{}, Extent{}, err
	}
	dims, err := r.Shape()
	if err != nil {
		return MapInfo{}, Extent{}, utils.KindError("read cube shape", ErrMalformedMetadata, err)
	}
	if len(dims) < 2 {
		return MapInfo{}, Extent{}, utils.KindError("read cube shape", ErrMalformedMetadata,
			fmt.Errorf("cube has %d dimensions", len(dims)))
	}
	return mi, mi.Extent(int(dims[0]), int(dims[1])), nil
}

// ScaleFactor reads the scale factor attribute. Zero is rejected.
func (r *Reflectance) ScaleFactor() (float64, error) {
	v, err := r.floatAttr(r.layout.ScaleAttr)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, utils.KindError("read "+r.layout.ScaleAttr, ErrMalformedMetadata,
			errors.New("scale factor is zero"))
	}
	return v, nil
}

// NoDataValue reads the no-data sentinel attribute.
func (r *Reflectance) NoDataValue() (float64, error) {
	return r.floatAttr(r.layout.NoDataAttr)
}

func (r *Reflectance) floatAttr(name string) (float64, error) {
	raw, err := r.data.ReadAttribute(name)
	if err != nil {
		return 0, utils.KindError("read "+name, ErrMalformedMetadata, err)
	}
	v, err := toFloat(raw)
	if err != nil {
		return 0, utils.KindError("read "+name, ErrMalformedMetadata, err)
	}
	return v, nil
}

// toFloat converts a scalar or single-element attribute value to float64.
func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("attribute value %q: %w", x, err)
		}
		return f, nil
	case []float64:
		if len(x) == 1 {
			return x[0], nil
		}
	case []float32:
		if len(x) == 1 {
			return float64(x[0]), nil
		}
	case []int32:
		if len(x) == 1 {
			return float64(x[0]), nil
		}
	case []int64:
		if len(x) == 1 {
			return float64(x[0]), nil
		}
	case []string:
		if len(x) == 1 {
			return toFloat(x[0])
		}
	}
	return 0, fmt.Errorf("attribute value %v (%T) is not a single number", v, v)
}

// datasetCube adapts an HDF5 dataset to Cube.
type datasetCube struct {
	*hdf5.Dataset
}

// Shape parses the dataset dimensions from its info string.
func (c datasetCube) Shape() ([]uint64, error) {
	info, err := c.Info()
	if err != nil {
		return nil, err
	}
	return parseDims(info)
}

// Read returns every cube element in row-major order.
func (c datasetCube) Read() ([]float64, error) {
	return readCube(c.Dataset)
}

// cubeReader is the part of *hdf5.Dataset that readCube needs.
type cubeReader interface {
	Info() (string, error)
	Read() ([]float64, error)
}

// readCube reads the whole cube as float64. Only 32- and 64-bit integers and
// floats convert; anything else is reported as malformed metadata naming the
// stored datatype.
func readCube(ds cubeReader) ([]float64, error) {
	data, err := ds.Read()
	if err == nil {
		return data, nil
	}
	info, infoErr := ds.Info()
	if infoErr != nil {
		return nil, err
	}
	class, size, ok := parseDatatype(info)
	if !ok || supportedDatatype(class, size) {
		return nil, err
	}
	return nil, utils.KindError("read reflectance data", ErrMalformedMetadata,
		fmt.Errorf("unsupported datatype %s (size=%d bytes), want 32- or 64-bit integer or float: %w",
			class, size, err))
}

var datatypePattern = regexp.MustCompile(`^Dataset: (\w+) \(size=(\d+) bytes\)`)

// parseDatatype extracts the datatype class and element size from a dataset
// info string.
func parseDatatype(info string) (string, int, bool) {
	m := datatypePattern.FindStringSubmatch(info)
	if m == nil {
		return "", 0, false
	}
	size, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], size, true
}

func supportedDatatype(class string, size int) bool {
	return (class == "integer" || class == "float") && (size == 4 || size == 8)
}

var dimsPattern = regexp.MustCompile(`(\d+)D array \[([^\]]*)\]`)

// parseDims extracts dimensions from a dataset info string such as
// "Dataset: integer (size=4 bytes), 3D array [4 2 3], contiguous".
func parseDims(info string) ([]uint64, error) {
	m := dimsPattern.FindStringSubmatch(info)
	if m == nil {
		return nil, fmt.Errorf("no array dataspace in %q", info)
	}
	rank, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("rank in %q: %w", info, err)
	}

	var dims []uint64
	for _, tok := range strings.Fields(m[2]) {
		if tok == "x" {
			continue
		}
		d, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dimension %q in %q: %w", tok, info, err)
		}
		dims = append(dims, d)
	}
	if len(dims) != rank {
		return nil, fmt.Errorf("%q declares %d dimensions, found %d", info, rank, len(dims))
	}
	return dims, nil
}
