package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/scigolib/bandhist"
	"github.com/scigolib/bandhist/internal/testfile"
)

func quietLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	return log, &buf
}

const (
	fixtureRows, fixtureCols, fixtureBands = 4, 2, 3
	fixtureNoData                          = -9999
	fixtureScale                           = 10000.0
)

// fixtureValue puts the sentinel on a diagonal that shifts with the band, so
// each band has its own valid count and value range.
func fixtureValue(r, c, b int) int32 {
	if (r+c+b)%3 == 0 {
		return fixtureNoData
	}
	return int32(1000*(b+1) + r*fixtureCols + c)
}

// bandStats returns the valid cell count and cleansed value range of a
// 1-based fixture band.
func bandStats(band int) (int, float64, float64) {
	n, lo, hi := 0, math.Inf(1), math.Inf(-1)
	for r := 0; r < fixtureRows; r++ {
		for c := 0; c < fixtureCols; c++ {
			v := fixtureValue(r, c, band-1)
			if v == fixtureNoData {
				continue
			}
			x := float64(v) / fixtureScale
			n++
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
		}
	}
	return n, lo, hi
}

func fixture(t *testing.T) string {
	t.Helper()
	fx := testfile.NEON("SERC", fixtureRows, fixtureCols, fixtureBands, fixtureValue)
	require.Equal(t, fixtureScale, fx.ScaleFactor)
	fn := filepath.Join(t.TempDir(), "serc.h5")
	require.NoError(t, testfile.Write(fn, fx))
	return fn
}

func TestRun_WritesHistogram(t *testing.T) {
	in := fixture(t)
	out := filepath.Join(t.TempDir(), "band2.png")

	log, buf := quietLogger()
	require.NoError(t, run([]string{in, "2", out}, log, io.Discard))

	fi, err := os.Stat(out)
	require.NoError(t, err)
	require.Positive(t, fi.Size())

	require.Contains(t, buf.String(), "reflectance data dimensions")
	require.Contains(t, buf.String(), "wrote histogram")
	// Band 2 loses (1,1) and (2,0) to the sentinel.
	require.Contains(t, buf.String(), "entries=6 ")
	require.NotContains(t, buf.String(), "cleansed band", "debug output needs --verbose")
}

func TestRun_BinsRequestedBand(t *testing.T) {
	in := fixture(t)

	for band := 1; band <= fixtureBands; band++ {
		t.Run(fmt.Sprintf("band %d", band), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "band.png")
			log, buf := quietLogger()
			require.NoError(t, run([]string{in, strconv.Itoa(band), out, "--verbose"}, log, io.Discard))

			n, lo, hi := bandStats(band)
			logged := buf.String()
			require.Contains(t, logged, fmt.Sprintf("entries=%d ", n))
			require.Contains(t, logged, fmt.Sprintf("valid=%d", n))
			require.Contains(t, logged, fmt.Sprintf("missing=%d", fixtureRows*fixtureCols-n))
			require.Contains(t, logged, fmt.Sprintf("min=%v ", lo))
			require.Contains(t, logged, fmt.Sprintf("max=%v ", hi))
		})
	}
}

func TestRun_Verbose(t *testing.T) {
	tests := []struct {
		name string
		args func(in, out string) []string
	}{
		{"after positionals", func(in, out string) []string { return []string{in, "1", out, "--verbose"} }},
		{"between positionals", func(in, out string) []string { return []string{in, "--verbose", "1", out} }},
		{"single dash flag", func(in, out string) []string { return []string{"-verbose", in, "1", out} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := fixture(t)
			out := filepath.Join(t.TempDir(), "band1.svg")

			log, buf := quietLogger()
			require.NoError(t, run(tt.args(in, out), log, io.Discard))
			require.Equal(t, logrus.DebugLevel, log.GetLevel())
			require.Contains(t, buf.String(), "cleansed band")
			require.Contains(t, buf.String(), "wavelengths")
		})
	}
}

func TestRun_FlagsAndConfig(t *testing.T) {
	in := fixture(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mk_hist.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("plot:\n  bins: 10\n  fill: \"#ff8800\"\n"), 0o600))
	out := filepath.Join(dir, "band3.png")

	log, buf := quietLogger()
	err := run([]string{"-config", cfgPath, "-bins", "7", "-site", "SERC", in, "3", out}, log, io.Discard)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "bins=7")
}

func TestRun_Failures(t *testing.T) {
	in := fixture(t)
	dir := t.TempDir()

	tests := []struct {
		name     string
		args     []string
		kind     error
		exitCode int
	}{
		{"no args", nil, errUsage, 2},
		{"too few args", []string{in, "1"}, errUsage, 2},
		{"band not integer", []string{in, "two", filepath.Join(dir, "x.png")}, errUsage, 2},
		{"unknown flag", []string{"-nope", in, "1", filepath.Join(dir, "x.png")}, errUsage, 2},
		{"bad bins", []string{"-bins", "-3", in, "1", filepath.Join(dir, "x.png")}, errUsage, 2},
		{"missing file", []string{filepath.Join(dir, "missing.h5"), "1", filepath.Join(dir, "x.png")}, bandhist.ErrFileNotFound, 3},
		{"unknown site", []string{"-site", "HARV", in, "1", filepath.Join(dir, "x.png")}, bandhist.ErrMalformedMetadata, 4},
		{"site named -v", []string{"-site", "-v", in, "1", filepath.Join(dir, "x.png")}, bandhist.ErrMalformedMetadata, 4},
		{"short verbose is not a flag", []string{"-v", in, "1", filepath.Join(dir, "x.png")}, errUsage, 2},
		{"band zero", []string{in, "0", filepath.Join(dir, "x.png")}, bandhist.ErrBandOutOfRange, 5},
		{"band past end", []string{in, "4", filepath.Join(dir, "x.png")}, bandhist.ErrBandOutOfRange, 5},
		{"unwritable output", []string{in, "1", filepath.Join(dir, "no", "such", "dir.png")}, bandhist.ErrWriteFailed, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, _ := quietLogger()
			err := run(tt.args, log, io.Discard)
			require.Error(t, err)
			require.ErrorIs(t, err, tt.kind)
			require.Equal(t, tt.exitCode, exitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, exitCode(nil))
	require.Equal(t, 1, exitCode(errors.New("other")))
}

func TestStripVerbose(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		want        []string
		wantVerbose bool
	}{
		{"trailing", []string{"a.h5", "2", "out.png", "--verbose"}, []string{"a.h5", "2", "out.png"}, true},
		{"middle", []string{"a.h5", "--verbose", "2", "out.png"}, []string{"a.h5", "2", "out.png"}, true},
		{"absent", []string{"a.h5", "2", "out.png"}, []string{"a.h5", "2", "out.png"}, false},
		{"flag value kept", []string{"-site", "-v", "a.h5", "2", "out.png"}, []string{"-site", "-v", "a.h5", "2", "out.png"}, false},
		{"single dash left to flag parsing", []string{"-verbose", "a.h5", "2", "out.png"}, []string{"-verbose", "a.h5", "2", "out.png"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, verbose := stripVerbose(tt.args)
			require.Equal(t, tt.wantVerbose, verbose)
			require.Equal(t, tt.want, args)
		})
	}
}
