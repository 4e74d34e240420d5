package bandhist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scigolib/bandhist/internal/utils"
)

// Map_Info field positions. The string is an ENVI-style "map info" record,
// e.g. "UTM,1.000,1.000,368005.000,4307000.000,1.0000000000e+00,1.0000000000e+00,18,North,WGS-84,units=Meters".
const (
	fieldProjection = iota
	fieldRefPixelX
	fieldRefPixelY
	fieldULX
	fieldULY
	fieldResX
	fieldResY
	fieldZone
	fieldHemisphere
	fieldDatum
	fieldUnits
)

// MapInfo is the parsed Map_Info metadata record.
//
// Only the origin and resolution are required; the remaining fields are
// filled when present and parsable and left zero otherwise.
type MapInfo struct {
	Projection string
	RefPixelX  float64
	RefPixelY  float64
	ULX        float64 // Upper-left corner x (xMin).
	ULY        float64 // Upper-left corner y (yMax).
	ResX       float64
	ResY       float64
	Zone       int
	Hemisphere string
	Datum      string
	Units      string
}

// Extent is the spatial bounding box of a raster.
type Extent struct {
	XMin, XMax float64
	YMin, YMax float64
}

// String formats the extent as (xMin, xMax, yMin, yMax).
func (e Extent) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return fmt.Sprintf("(%s, %s, %s, %s)", f(e.XMin), f(e.XMax), f(e.YMin), f(e.YMax))
}

// ParseMapInfo splits a comma-delimited Map_Info string and parses the
// upper-left origin and pixel resolution.
func ParseMapInfo(text string) (MapInfo, error) {
	fields := strings.Split(text, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	var mi MapInfo
	required := []struct {
		idx  int
		name string
		dst  *float64
	}{
		{fieldULX, "upper-left x", &mi.ULX},
		{fieldULY, "upper-left y", &mi.ULY},
		{fieldResX, "x resolution", &mi.ResX},
		{fieldResY, "y resolution", &mi.ResY},
	}
	for _, r := range required {
		if r.idx >= len(fields) {
			return MapInfo{}, utils.KindError("parse map info", ErrMalformedMetadata,
				fmt.Errorf("%s (field %d) missing: only %d fields", r.name, r.idx, len(fields)))
		}
		v, err := strconv.ParseFloat(fields[r.idx], 64)
		if err != nil {
			return MapInfo{}, utils.KindError("parse map info", ErrMalformedMetadata,
				fmt.Errorf("%s (field %d): %w", r.name, r.idx, err))
		}
		*r.dst = v
	}

	mi.Projection = fields[fieldProjection]
	mi.RefPixelX = optionalFloat(fields, fieldRefPixelX)
	mi.RefPixelY = optionalFloat(fields, fieldRefPixelY)
	if fieldZone < len(fields) {
		mi.Zone, _ = strconv.Atoi(fields[fieldZone])
	}
	mi.Hemisphere = optionalString(fields, fieldHemisphere)
	mi.Datum = optionalString(fields, fieldDatum)
	mi.Units = strings.TrimPrefix(optionalString(fields, fieldUnits), "units=")

	return mi, nil
}

// Extent derives the bounding box for a raster of rows x cols pixels whose
// upper-left corner is (ULX, ULY).
func (m MapInfo) Extent(rows, cols int) Extent {
	return Extent{
		XMin: m.ULX,
		XMax: m.ULX + float64(cols)*m.ResX,
		YMin: m.ULY - float64(rows)*m.ResY,
		YMax: m.ULY,
	}
}

func optionalFloat(fields []string, idx int) float64 {
	if idx >= len(fields) {
		return 0
	}
	v, err := strconv.ParseFloat(fields[idx], 64)
	if err != nil {
		return 0
	}
	return v
}

func optionalString(fields []string, idx int) string {
	if idx >= len(fields) {
		return ""
	}
	return fields[idx]
}
