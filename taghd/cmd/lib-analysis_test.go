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
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/shenwei356/taghd/taghd/hd"
	"github.com/shenwei356/taghd/taghd/tags"
)

func testRecords(lines ...string) []*tags.Record {
	recs := make([]*tags.Record, 0, len(lines))
	for _, line := range lines {
		r, ok, err := tags.ParseLine(line)
		if err != nil || !ok {
			panic(line)
		}
		recs = append(recs, r)
	}
	return recs
}

var testLines = []string{
	"1\tAAAACCCC\tab",
	"2\tAAAACCCC\tba",
	"3\tAAAAGGGG\tab",
	"1\tTTTTCCCC\tab",
	"5\tAAAACCCA\tab",
}

func testAnalysisOptions() *AnalysisOptions {
	return &AnalysisOptions{NumCPUs: 2, MinFamilySize: 1}
}

func TestCheckAnalysisOptions(t *testing.T) {
	opt := testAnalysisOptions()
	if err := CheckAnalysisOptions(opt); err != nil {
		t.Error(err)
	}

	for _, o := range []AnalysisOptions{
		{NumCPUs: 0},
		{NumCPUs: 1, MinFamilySize: -1},
		{NumCPUs: 1, MinFamilySize: 3, MaxFamilySize: 2},
		{NumCPUs: 1, SubsetTag: -1},
		{NumCPUs: 1, SampleSize: -1},
	} {
		o := o
		if err := CheckAnalysisOptions(&o); err == nil {
			t.Errorf("invalid options should be rejected: %+v", o)
		}
	}
}

func TestAnalyze(t *testing.T) {
	opt := testAnalysisOptions()
	ds, err := prepareDataset("test", testRecords(testLines...), opt)
	if err != nil {
		t.Fatal(err)
	}
	if ds.TagLength != 8 || ds.NumRaw != 5 || ds.NumByFS != 5 {
		t.Errorf("unexpected data set: %+v", ds)
	}

	var n atomic.Int64
	a, err := analyze(ds, opt, func(i int) { n.Add(int64(i)) })
	if err != nil {
		t.Fatal(err)
	}
	// 5 queries, 3 runs
	if n.Load() != 15 {
		t.Errorf("progress: expected 15, got %d", n.Load())
	}

	if a.Pool.Len() != 4 {
		t.Errorf("expected 4 unique tags, got %d", a.Pool.Len())
	}

	expected := []int{1, 1, 4, 4, 1}
	for i, d := range a.Nearest {
		if d != expected[i] {
			t.Errorf("nearest distances: expected %v, got %v", expected, a.Nearest)
			break
		}
	}

	// ties are all kept
	if len(a.Chimeras) != 19 {
		t.Fatalf("expected 19 records, got %d", len(a.Chimeras))
	}
	for i, r := range a.Chimeras {
		if (i < 11) != (r.Orientation == hd.PrimaryHalfA) {
			t.Errorf("records of the first half should come first")
			break
		}
	}

	// TTTTCCCC: the second half is identical to that of AAAACCCC
	var found bool
	for _, r := range a.Chimeras[11:] {
		if string(r.Query) == "TTTTCCCC" {
			found = true
			if string(r.Match) != "AAAACCCC" || r.DistA() != 4 || r.DistB() != 0 || !r.ZeroHalf || r.RelDiff != 1 {
				t.Errorf("unexpected record: %+v", r)
			}
		}
	}
	if !found {
		t.Errorf("record of TTTTCCCC not found")
	}

	fs := a.QueryFamilySizes()
	if len(fs) != 5 || fs[4] != 5 {
		t.Errorf("unexpected family sizes: %v", fs)
	}
}

func TestAnalyzeDCS(t *testing.T) {
	opt := testAnalysisOptions()
	opt.OnlyDCS = true

	ds, err := prepareDataset("test", testRecords(append(testLines, "4\tTTTTCCCC\tba")...), opt)
	if err != nil {
		t.Fatal(err)
	}
	if ds.NumDuplex != 2 || len(ds.Records) != 2 {
		t.Fatalf("expected 2 DCSs, got %d", ds.NumDuplex)
	}
	if !reflect.DeepEqual(ds.FamilySizesBA, []int{2, 4}) {
		t.Errorf("unexpected family sizes of ba strands: %v", ds.FamilySizesBA)
	}

	a, err := analyze(ds, opt, nil)
	if err != nil {
		t.Fatal(err)
	}

	fs := a.SampleFamilySizes()
	dists := a.NearestDistances()
	efs := []int{1, 1, 2, 4}
	if len(fs) != 4 || len(dists) != 4 {
		t.Fatalf("family sizes of both strands expected: %v, %v", fs, dists)
	}
	for i := range fs {
		if fs[i] != efs[i] || dists[i] != 4 {
			t.Errorf("unexpected family sizes or distances: %v, %v", fs, dists)
			break
		}
	}

	// only one DCS
	ds, err = prepareDataset("test", testRecords(testLines...), opt)
	if err != nil {
		t.Fatal(err)
	}
	_, err = analyze(ds, opt, nil)
	if _, ok := errors.Cause(err).(*hd.InsufficientDataError); !ok {
		t.Errorf("InsufficientDataError expected, got %v", err)
	}
}

func TestPrepareDatasetErrors(t *testing.T) {
	opt := testAnalysisOptions()
	opt.MinFamilySize = 10
	if _, err := prepareDataset("test", testRecords(testLines...), opt); err == nil {
		t.Errorf("error expected for no tags left")
	}

	opt = testAnalysisOptions()
	opt.SubsetTag = 5
	_, err := prepareDataset("test", testRecords(testLines...), opt)
	if _, ok := errors.Cause(err).(*hd.ConfigError); !ok {
		t.Errorf("ConfigError expected, got %v", err)
	}

	opt = testAnalysisOptions()
	opt.SubsetTag = 2
	ds, err := prepareDataset("test", testRecords(testLines...), opt)
	if err != nil {
		t.Fatal(err)
	}
	if ds.TagLength != 4 || string(ds.Records[2].Seq) != "AAGG" {
		t.Errorf("unexpected shortened tags: %s", ds.Records[2].Seq)
	}

	opt = testAnalysisOptions()
	opt.SampleSize = 6
	ds, _ = prepareDataset("test", testRecords(testLines...), opt)
	_, err = analyze(ds, opt, nil)
	if _, ok := errors.Cause(err).(*hd.ConfigError); !ok {
		t.Errorf("ConfigError expected, got %v", err)
	}
}

func TestSampling(t *testing.T) {
	opt := testAnalysisOptions()
	opt.SampleSize = 3
	opt.Seed = 11

	ds, _ := prepareDataset("test", testRecords(testLines...), opt)
	a1, err := newAnalysis(ds, opt)
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := newAnalysis(ds, opt)
	if len(a1.Sample) != 3 {
		t.Fatalf("expected 3 queries, got %d", len(a1.Sample))
	}
	seen := make(map[int]bool)
	for i, j := range a1.Sample {
		if j != a2.Sample[i] {
			t.Errorf("the same seed should give the same sample")
		}
		if seen[j] {
			t.Errorf("duplicated index in sample: %v", a1.Sample)
		}
		seen[j] = true
	}
}

func TestReport(t *testing.T) {
	opt := testAnalysisOptions()
	ds, _ := prepareDataset("test", testRecords(testLines...), opt)
	a, err := analyze(ds, opt, nil)
	if err != nil {
		t.Fatal(err)
	}
	tb := newReportTables(a)
	if tb.HD.Total() != 5 {
		t.Errorf("expected 5 distances, got %d", tb.HD.Total())
	}
	if tb.Within.Total() != 19*3 {
		t.Errorf("expected %d half distances, got %d", 19*3, tb.Within.Total())
	}
	if tb.ZeroHalf == 0 || tb.ZeroHalfHD == nil {
		t.Errorf("records with an identical half expected")
	}

	var buf bytes.Buffer
	if err = writeSummary(&buf, a, tb, ","); err != nil {
		t.Fatal(err)
	}
	s := buf.String()
	for _, sub := range []string{
		"number of tags per file,5 (from 5) against 5\n",
		"Hamming distance with separation after family size\n,FS=1,FS=2,FS=3,FS=4,FS=5-10,FS>10,sum\n",
		"max. family size:,5\n",
		"actual number of tags with min HD = 19 (sample size = 5)\n",
		"length of one part of the tag = 4\n",
		"Hamming distances of non-zero half\n",
	} {
		if !strings.Contains(s, sub) {
			t.Errorf("summary should contain %q", sub)
		}
	}

	buf.Reset()
	if err = writeNearest(&buf, a, true, false); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "tag\tlabel\tfamily_size\thd\nAAAACCCC\tab\t1\t1\n") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	if err = writeChimeras(&buf, a, false, true); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 19 {
		t.Errorf("expected 19 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "test\tAAAACCCC\t1\ta\tAAAACCCA\t0\t1\t1\t1\t1.0\ttrue") {
		t.Errorf("unexpected line: %s", lines[0])
	}

	dir := t.TempDir()
	pages, err := writePlots(filepath.Join(dir, "hd.pdf"), a, tb)
	if err != nil {
		t.Fatal(err)
	}
	if pages != 9 {
		t.Errorf("expected 9 pages, got %d", pages)
	}

	file := filepath.Join(dir, "info.toml")
	if err = newRunInfo("test.tsv", a, tb, opt).save(file); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("[counts]")) || !bytes.Contains(data, []byte("[nearest-distance]")) {
		t.Errorf("unexpected run information:\n%s", data)
	}
}

func TestZeroHalfRecords(t *testing.T) {
	opt := testAnalysisOptions()
	ds, _ := prepareDataset("test", testRecords(testLines...), opt)
	a, _ := newAnalysis(ds, opt)
	if err := a.runChimeras(dispatchOptions(opt, nil)); err != nil {
		t.Fatal(err)
	}
	rs := zeroHalfRecords(a.Chimeras)
	if len(rs) == 0 || len(rs) >= len(a.Chimeras) {
		t.Errorf("unexpected number of records: %d", len(rs))
	}
	for _, r := range rs {
		if r.DistA() != 0 && r.DistB() != 0 {
			t.Errorf("record without an identical half: %+v", r)
		}
	}
}

func TestDatasetName(t *testing.T) {
	for file, name := range map[string]string{
		"-":                   "stdin",
		"a/b/x.tabular.gz":    "x",
		"a/b/y.tsv":           "y",
		"~/data/z.sample.txt": "z.sample",
		"w":                   "w",
	} {
		if n := datasetName(file); n != name {
			t.Errorf("%s: expected %s, got %s", file, name, n)
		}
	}
}
