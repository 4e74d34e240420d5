// Package main provides mk_hist, which writes a histogram image of one band
// of a hyperspectral reflectance HDF5 file.
//
// Usage:
//
//	mk_hist [-config mk_hist.yaml] [-bins N] [-site NAME] [--verbose] <file.h5> <band> <out.png>
//
// band is 1-based. The image format follows the output extension.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/scigolib/bandhist"
	"github.com/scigolib/bandhist/internal/config"
)

var errUsage = errors.New("usage: mk_hist [flags] <file.h5> <band> <out.png>")

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if err := run(os.Args[1:], log, os.Stderr); err != nil {
		log.WithError(err).Error("mk_hist failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failure kind to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	case errors.Is(err, bandhist.ErrFileNotFound):
		return 3
	case errors.Is(err, bandhist.ErrMalformedMetadata):
		return 4
	case errors.Is(err, bandhist.ErrBandOutOfRange):
		return 5
	case errors.Is(err, bandhist.ErrWriteFailed):
		return 6
	default:
		return 1
	}
}

// stripVerbose removes --verbose from args wherever it appears, so it may
// follow the positional arguments.
func stripVerbose(args []string) ([]string, bool) {
	out := make([]string, 0, len(args))
	verbose := false
	for _, a := range args {
		if a == "--verbose" {
			verbose = true
			continue
		}
		out = append(out, a)
	}
	return out, verbose
}

func run(args []string, log *logrus.Logger, stderr io.Writer) error {
	args, verbose := stripVerbose(args)

	fs := flag.NewFlagSet("mk_hist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	bins := fs.Int("bins", 0, "number of histogram bins (default from config)")
	site := fs.String("site", "", "site group name (default: discovered)")
	verboseFlag := fs.Bool("verbose", false, "log debug diagnostics")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("%w: got %d positional arguments", errUsage, fs.NArg())
	}

	filename, output := fs.Arg(0), fs.Arg(2)
	band, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("%w: band %q is not an integer", errUsage, fs.Arg(1))
	}

	log.SetLevel(logrus.InfoLevel)
	if verbose || *verboseFlag {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *bins != 0 {
		cfg.Plot.Bins = *bins
	}
	if *site != "" {
		cfg.Layout.Site = *site
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	return makeHistogram(log, cfg, filename, band, output)
}

func makeHistogram(log *logrus.Logger, cfg config.Config, filename string, band int, output string) error {
	r, err := bandhist.Open(filename, bandhist.WithLayout(cfg.Layout))
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.WithError(err).Warn("close input")
		}
	}()

	for _, e := range bandhist.ListDatasets(r.File()) {
		if e.Err != nil {
			log.WithError(e.Err).WithField("path", e.Path).Warn("dataset header unreadable")
			continue
		}
		log.WithField("path", e.Path).Info(e.Info)
	}

	dims, err := r.Shape()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"site": r.Site(), "dims": dims}).Info("reflectance data dimensions")

	if w, err := r.Wavelengths(); err != nil {
		log.WithError(err).Debug("no wavelength metadata")
	} else if s, err := bandhist.SummarizeWavelengths(w); err == nil {
		log.WithFields(logrus.Fields{
			"bands":       s.Bands,
			"min_nm":      s.Min,
			"max_nm":      s.Max,
			"first_width": s.FirstWidth,
			"last_width":  s.LastWidth,
		}).Debug("wavelengths")
	}

	mi, ext, err := r.Extent()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"x": mi.ResX, "y": mi.ResY}).Info("resolution")
	log.WithFields(logrus.Fields{
		"projection": mi.Projection,
		"zone":       mi.Zone,
		"datum":      mi.Datum,
		"extent":     ext.String(),
	}).Debug("map info")

	scale, err := r.ScaleFactor()
	if err != nil {
		return err
	}
	noData, err := r.NoDataValue()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"scale_factor": scale, "data_ignore_value": noData}).Debug("band attributes")

	raw, err := r.Band(band)
	if err != nil {
		return err
	}
	clean := bandhist.Cleanse(raw, noData, scale)
	valid := clean.Valid()
	fields := logrus.Fields{
		"band":    band,
		"rows":    clean.Rows,
		"cols":    clean.Cols,
		"valid":   len(valid),
		"missing": clean.Missing(),
	}
	if len(valid) > 0 {
		fields["min"] = floats.Min(valid)
		fields["max"] = floats.Max(valid)
	}
	log.WithFields(fields).Debug("cleansed band")

	h, err := bandhist.NewHistogram(valid, cfg.Plot.Bins)
	if err != nil {
		return err
	}
	opts, err := cfg.PlotOptions(r.Site(), band)
	if err != nil {
		return err
	}
	if err := h.Save(output, opts); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"output": output, "entries": h.Entries(), "bins": h.Bins()}).Info("wrote histogram")
	return nil
}
