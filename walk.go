package bandhist

import "github.com/scigolib/hdf5"

// DatasetEntry describes one dataset found while walking a file.
type DatasetEntry struct {
	Path string
	Info string
	Err  error // Set when the dataset header could not be read.
}

// ListDatasets walks f depth-first and returns every dataset with its info string.
func ListDatasets(f *hdf5.File) []DatasetEntry {
	var out []DatasetEntry
	f.Walk(func(p string, obj hdf5.Object) {
		ds, ok := obj.(*hdf5.Dataset)
		if !ok {
			return
		}
		entry := DatasetEntry{Path: p}
		entry.Info, entry.Err = ds.Info()
		out = append(out, entry)
	})
	return out
}
