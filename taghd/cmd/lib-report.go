// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/shenwei356/taghd/taghd/figure"
	"github.com/shenwei356/taghd/taghd/hd"
	"github.com/shenwei356/taghd/taghd/strat"
)

// reportTables are count tables of an analysis.
type reportTables struct {
	HD  *strat.Table // nearest distances by family sizes
	FSD *strat.Table // family sizes by nearest distances

	Within     *strat.Table // half distances
	Diff       *strat.Table // absolute differences of half distances by family sizes
	RelDiff    *strat.Table // relative differences by family sizes
	FSDDiff    *strat.Table // family sizes by absolute differences
	FSDRelDiff *strat.Table // family sizes by relative differences

	// only records with an identical half,
	// where the difference is the distance of the other half.
	ZeroHalf    int
	ZeroHalfHD  *strat.Table
	ZeroHalfFSD *strat.Table
}

func newReportTables(a *Analysis) *reportTables {
	t := &reportTables{}

	fs := a.SampleFamilySizes()
	dists := a.NearestDistances()
	t.HD = strat.DistanceByFamilySize(
		"Hamming distance with separation after family size", "HD=", fs, dists)
	t.FSD = strat.FamilySizeByDistance(
		"Family size distribution with separation after Hamming distances", fs, dists, false)

	qfs := a.QueryFamilySizes()
	c := strat.NewChimeraColumns(a.Chimeras, qfs, false)
	t.Within = strat.WithinTagTable(
		"Hamming distance of each half in the tag", c.Sums, c.DistA, c.DistB)
	t.Diff = strat.DistanceByFamilySize(
		"Absolute delta Hamming distances within the tag", "diff=", c.FamilySizes, c.Diffs)
	t.RelDiff = strat.RelDiffByFamilySize(
		"Relative delta Hamming distances within the tag", "diff=", c.FamilySizes, c.RelDiffs)
	t.FSDDiff = strat.FamilySizeByDistance(
		"Family size distribution with separation after absolute delta Hamming distances",
		c.FamilySizes, c.Diffs, true)
	t.FSDRelDiff = strat.FamilySizeByRelDiff(
		"Family size distribution with separation after relative delta Hamming distances",
		c.FamilySizes, c.RelDiffs)

	z := strat.NewChimeraColumns(a.Chimeras, qfs, true)
	t.ZeroHalf = z.Len()
	if t.ZeroHalf > 0 {
		t.ZeroHalfHD = strat.DistanceByFamilySize(
			"Hamming distances of non-zero half", "diff=", z.FamilySizes, z.Diffs)
		t.ZeroHalfFSD = strat.FamilySizeByDistance(
			"Family size distribution with separation after Hamming distances of non-zero half",
			z.FamilySizes, z.Diffs, false)
	}
	return t
}

// writeSummary writes all tables of an analysis, sep is the column separator.
func writeSummary(w io.Writer, a *Analysis, t *reportTables, sep string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", a.Name)
	fmt.Fprintf(bw, "number of tags per file%s%d (from %d) against %d\n\n",
		sep, len(a.Sample), len(a.Dataset.Records), len(a.Dataset.Records))

	var err error
	for _, tb := range []*strat.Table{t.HD, t.FSD} {
		if err = tb.Write(bw, sep); err != nil {
			return err
		}
	}

	// the largest family size
	fs := a.SampleFamilySizes()
	var max, n int
	for _, v := range fs {
		if v > max {
			max, n = v, 1
		} else if v == max {
			n++
		}
	}
	fmt.Fprintf(bw, "%s%s\n", sep, a.Name)
	fmt.Fprintf(bw, "max. family size:%s%d\n", sep, max)
	fmt.Fprintf(bw, "absolute frequency:%s%d\n", sep, n)
	fmt.Fprintf(bw, "relative frequency:%s%s\n\n", sep, strconv.FormatFloat(float64(n)/float64(len(fs)), 'f', -1, 64))

	fmt.Fprintf(bw, "The Hamming distances were calculated by comparing each half of all tags against the tag(s) with the minimum Hamming distance per half.\n")
	fmt.Fprintf(bw, "One tag can have the minimum Hamming distance from multiple tags, so the number of records differs from the sample size.\n")
	fmt.Fprintf(bw, "actual number of tags with min HD = %d (sample size = %d)\n", len(a.Chimeras), len(a.Sample))
	fmt.Fprintf(bw, "length of one part of the tag = %d\n\n", hd.Midpoint(a.TagLength))

	for _, tb := range []*strat.Table{t.Within, t.Diff, t.RelDiff, t.FSDDiff, t.FSDRelDiff} {
		if err = tb.Write(bw, sep); err != nil {
			return err
		}
	}

	if t.ZeroHalf > 0 {
		fmt.Fprintf(bw, "Only records where at least one half is identical to the half of the nearest tag are kept.\n")
		fmt.Fprintf(bw, "So the Hamming distance of the non-identical half is compared.\n")
		for _, tb := range []*strat.Table{t.ZeroHalfHD, t.ZeroHalfFSD} {
			if err = tb.Write(bw, sep); err != nil {
				return err
			}
		}
	}
	fmt.Fprintln(bw)

	return bw.Flush()
}

// writePlots renders histograms of the tables into a PDF file.
// It returns the number of pages.
func writePlots(file string, a *Analysis, t *reportTables) (int, error) {
	r := figure.NewReport()

	type page struct {
		table   *strat.Table
		opt     *figure.Options
		grouped bool
	}
	pages := []page{
		{t.HD, &figure.Options{
			Subtitle: "Overall Hamming distance with separation after family size",
			XLabel:   "Hamming distance", Relative: true}, false},
		{t.FSD, &figure.Options{
			Subtitle: "Family size distribution with separation after Hamming distance",
			XLabel:   "family size"}, false},
		{t.Diff, &figure.Options{
			Subtitle: "Delta Hamming distances within tags with separation after family size",
			XLabel:   "absolute delta Hamming distance"}, false},
		{t.RelDiff, &figure.Options{
			Subtitle: "Relative delta Hamming distances within tags with separation after family size",
			XLabel:   "relative delta Hamming distance", Relative: true}, false},
		{t.FSDDiff, &figure.Options{
			Subtitle: "Family size distribution with separation after delta Hamming distances within the tags",
			XLabel:   "family size"}, false},
		{t.FSDRelDiff, &figure.Options{
			Subtitle: "Family size distribution with separation after relative delta Hamming distances within the tags",
			XLabel:   "family size", Relative: true}, false},
		{t.Within, &figure.Options{
			Subtitle: "Hamming distances of both halves and the whole tag",
			XLabel:   "Hamming distance", Relative: true}, true},
	}
	if t.ZeroHalf > 0 {
		pages = append(pages,
			page{t.ZeroHalfHD, &figure.Options{
				Subtitle: "Hamming distance of the non-identical half with separation after family size",
				XLabel:   "Hamming distance"}, false},
			page{t.ZeroHalfFSD, &figure.Options{
				Subtitle: "Family size distribution with separation after Hamming distances of the non-identical half",
				XLabel:   "family size"}, false},
		)
	}

	var err error
	for _, p := range pages {
		p.opt.Title = a.Name
		if p.grouped {
			_, err = r.AddGrouped(p.table, p.opt)
		} else {
			_, err = r.AddStacked(p.table, p.opt)
		}
		if err != nil {
			return 0, errors.Wrap(err, file)
		}
	}

	if r.Pages() == 0 {
		return 0, nil
	}
	return r.Pages(), r.Save(file)
}

// writeNearest writes whole-tag nearest distances of the sample.
// A column of the data set name is added if withName is true.
func writeNearest(w io.Writer, a *Analysis, header bool, withName bool) error {
	bw := bufio.NewWriter(w)
	var prefix string
	if withName {
		prefix = a.Name + "\t"
		if header {
			fmt.Fprintf(bw, "file\t")
		}
	}
	if header {
		fmt.Fprintf(bw, "tag\tlabel\tfamily_size\thd\n")
	}
	for i, j := range a.Sample {
		r := a.Dataset.Records[j]
		fmt.Fprintf(bw, "%s%s\t%s\t%d\t%d\n", prefix, r.Seq, r.Label, r.FamilySize, a.Nearest[i])
	}
	return bw.Flush()
}

// writeChimeras writes records of the half-wise search.
// A column of the data set name is added if withName is true.
func writeChimeras(w io.Writer, a *Analysis, header bool, withName bool) error {
	bw := bufio.NewWriter(w)
	var prefix string
	if withName {
		prefix = a.Name + "\t"
		if header {
			fmt.Fprintf(bw, "file\t")
		}
	}
	if header {
		fmt.Fprintf(bw, "tag\tfamily_size\tprimary_half\tmatch\thd_a\thd_b\thd_sum\tdiff\trel_diff\tzero_half\n")
	}
	fs := a.QueryFamilySizes()
	for i := range a.Chimeras {
		r := &a.Chimeras[i]
		fmt.Fprintf(bw, "%s%s\t%d\t%s\t%s\t%d\t%d\t%d\t%d\t%.1f\t%s\n",
			prefix, r.Query, fs[r.SampleIndex], r.Orientation, r.Match,
			r.DistA(), r.DistB(), r.Sum, r.Diff, r.RelDiff, strconv.FormatBool(r.ZeroHalf))
	}
	return bw.Flush()
}

// runInfo is saved as info.toml in the output directory.
type runInfo struct {
	Version string `toml:"version"`
	Input   string `toml:"input"`
	Date    string `toml:"date"`

	Parameters runParameters `toml:"parameters"`
	Counts     runCounts     `toml:"counts"`

	NearestDistance strat.Summary `toml:"nearest-distance"`
	HalfDistanceSum strat.Summary `toml:"half-distance-sum"`
}

type runParameters struct {
	MinFamilySize int   `toml:"min-fs"`
	MaxFamilySize int   `toml:"max-fs"`
	OnlyDCS       bool  `toml:"only-dcs"`
	SubsetTag     int   `toml:"subset-tag"`
	SampleSize    int   `toml:"sample-size"`
	Seed          int64 `toml:"seed"`
	Threads       int   `toml:"threads"`
}

type runCounts struct {
	Tags            int `toml:"tags"`
	TagsByFS        int `toml:"tags-after-fs-filter"`
	DCS             int `toml:"dcs"`
	UniqueTags      int `toml:"unique-tags"`
	TagLength       int `toml:"tag-length"`
	Sample          int `toml:"sample"`
	ChimeraRecords  int `toml:"chimera-records"`
	ZeroHalfRecords int `toml:"zero-half-records"`
}

func newRunInfo(file string, a *Analysis, t *reportTables, opt *AnalysisOptions) *runInfo {
	sums := make([]int, len(a.Chimeras))
	for i := range a.Chimeras {
		sums[i] = a.Chimeras[i].Sum
	}
	return &runInfo{
		Version: VERSION,
		Input:   file,
		Date:    time.Now().Format(time.RFC3339),
		Parameters: runParameters{
			MinFamilySize: opt.MinFamilySize,
			MaxFamilySize: opt.MaxFamilySize,
			OnlyDCS:       opt.OnlyDCS,
			SubsetTag:     opt.SubsetTag,
			SampleSize:    opt.SampleSize,
			Seed:          opt.Seed,
			Threads:       opt.NumCPUs,
		},
		Counts: runCounts{
			Tags:            a.NumRaw,
			TagsByFS:        a.NumByFS,
			DCS:             a.NumDuplex,
			UniqueTags:      a.Pool.Len(),
			TagLength:       a.TagLength,
			Sample:          len(a.Sample),
			ChimeraRecords:  len(a.Chimeras),
			ZeroHalfRecords: t.ZeroHalf,
		},
		NearestDistance: strat.Summarize(a.Nearest),
		HalfDistanceSum: strat.Summarize(sums),
	}
}

func (info *runInfo) save(file string) error {
	data, err := toml.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "marshal run information")
	}
	return errors.Wrap(os.WriteFile(file, data, 0644), file)
}
