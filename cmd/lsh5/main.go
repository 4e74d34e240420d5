// Package main provides lsh5, which lists every dataset in an HDF5 file with
// its type, shape and layout. With -cube it also summarises the reflectance
// cube the way mk_hist sees it.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/scigolib/hdf5"

	"github.com/scigolib/bandhist"
)

func main() {
	cube := flag.Bool("cube", false, "also print reflectance cube shape, extent and band attributes")
	site := flag.String("site", "", "site group name (default: discovered)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: lsh5 [flags] <file.h5>")
		fmt.Println("Flags:")
		flag.PrintDefaults()
		return
	}

	if err := list(os.Stdout, args[0]); err != nil {
		log.Fatalf("Failed to list %s: %v", args[0], err)
	}
	if *cube {
		if err := describe(os.Stdout, args[0], *site); err != nil {
			log.Fatalf("Failed to describe reflectance cube: %v", err)
		}
	}
}

func list(w io.Writer, filename string) error {
	f, err := hdf5.Open(filename)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close file: %v", err)
		}
	}()

	for _, e := range bandhist.ListDatasets(f) {
		if e.Err != nil {
			fmt.Fprintf(w, "%s: <%v>\n", e.Path, e.Err)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", e.Path, e.Info)
	}
	return nil
}

func describe(w io.Writer, filename, site string) error {
	var opts []bandhist.OpenOption
	if site != "" {
		opts = append(opts, bandhist.WithSite(site))
	}
	r, err := bandhist.Open(filename, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	dims, err := r.Shape()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Site: %s\nDimensions: %v\n", r.Site(), dims)

	mi, ext, err := r.Extent()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Resolution: (%g, %g)\nExtent: %s\n", mi.ResX, mi.ResY, ext)

	scale, err := r.ScaleFactor()
	if err != nil {
		return err
	}
	noData, err := r.NoDataValue()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Scale factor: %g\nData ignore value: %g\n", scale, noData)
	return nil
}
