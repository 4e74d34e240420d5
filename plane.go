package bandhist

import "math"

// Plane is a 2-D band plane stored row-major. NaN marks a missing cell.
type Plane struct {
	Rows int
	Cols int
	Data []float64
}

// At returns the value at row r, column c.
func (p *Plane) At(r, c int) float64 {
	return p.Data[r*p.Cols+c]
}

// Valid returns the non-missing values in row-major order.
func (p *Plane) Valid() []float64 {
	out := make([]float64, 0, len(p.Data))
	for _, v := range p.Data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Missing returns the number of missing cells.
func (p *Plane) Missing() int {
	n := 0
	for _, v := range p.Data {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Cleanse returns a new plane in which cells equal to the no-data sentinel
// are missing and every other cell is divided by scale.
//
// The sentinel is compared after truncation to an integer, since stored
// reflectance is integral while the attribute is often written as a float.
func Cleanse(p *Plane, noData, scale float64) *Plane {
	sentinel := math.Trunc(noData)
	out := &Plane{Rows: p.Rows, Cols: p.Cols, Data: make([]float64, len(p.Data))}
	for i, v := range p.Data {
		if v == sentinel {
			out.Data[i] = math.NaN()
			continue
		}
		out.Data[i] = v / scale
	}
	return out
}
