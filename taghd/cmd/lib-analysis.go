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
	"math/rand"

	"github.com/pkg/errors"
	"github.com/shenwei356/taghd/taghd/hd"
	"github.com/shenwei356/taghd/taghd/tags"
)

// AnalysisOptions contains options of preparing and analysing a data set.
type AnalysisOptions struct {
	NumCPUs int

	// filtering
	MinFamilySize int
	MaxFamilySize int // 0 for no limit
	OnlyDCS       bool
	SubsetTag     int // 0 for the whole tag

	// sampling
	SampleSize int // 0 for all tags
	Seed       int64

	StrictZeroSum bool
}

// CheckAnalysisOptions checks the options.
func CheckAnalysisOptions(opt *AnalysisOptions) error {
	if opt.NumCPUs <= 0 {
		return errors.Errorf("number of threads should be positive: %d", opt.NumCPUs)
	}
	if opt.MinFamilySize < 0 {
		return errors.Errorf("minimum family size should not be negative: %d", opt.MinFamilySize)
	}
	if opt.MaxFamilySize > 0 && opt.MaxFamilySize < opt.MinFamilySize {
		return errors.Errorf("maximum family size (%d) should not be smaller than the minimum one (%d)",
			opt.MaxFamilySize, opt.MinFamilySize)
	}
	if opt.SubsetTag < 0 {
		return errors.Errorf("length of tag subset should not be negative: %d", opt.SubsetTag)
	}
	if opt.SampleSize < 0 {
		return errors.Errorf("sample size should not be negative: %d", opt.SampleSize)
	}
	return nil
}

// Dataset is a filtered data set of tags.
type Dataset struct {
	Name string

	NumRaw    int // number of records in the file
	NumByFS   int // number of records after filtering by family sizes
	NumDuplex int // number of DCSs in DCS mode

	// Records are all tags. In DCS mode, they are the ab strands.
	Records []*tags.Record
	// FamilySizesBA are family sizes of the ba strands in DCS mode.
	FamilySizesBA []int

	TagLength int
}

// prepareDataset filters records and shortens tags.
func prepareDataset(name string, recs []*tags.Record, opt *AnalysisOptions) (*Dataset, error) {
	ds := &Dataset{Name: name, NumRaw: len(recs)}

	recs = tags.FilterFamilySize(recs, opt.MinFamilySize, opt.MaxFamilySize)
	ds.NumByFS = len(recs)
	if len(recs) == 0 {
		return nil, errors.Errorf("%s: no tags left after filtering by family sizes", name)
	}

	if opt.OnlyDCS {
		pairs := tags.DuplexPairs(recs)
		ds.NumDuplex = len(pairs)
		if len(pairs) == 0 {
			return nil, errors.Errorf("%s: no DCS found", name)
		}
		recs = make([]*tags.Record, len(pairs))
		bas := make([]*tags.Record, len(pairs))
		for i, p := range pairs {
			recs[i], bas[i] = p.AB, p.BA
		}
		ds.FamilySizesBA = tags.FamilySizes(bas)
	}

	var err error
	if opt.SubsetTag > 0 {
		recs, err = tags.Shorten(recs, opt.SubsetTag)
		if err != nil {
			return nil, errors.Wrap(&hd.ConfigError{Msg: err.Error()}, name)
		}
	}

	ds.Records = recs
	ds.TagLength, err = tags.TagLength(recs)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return ds, nil
}

// Analysis contains results of a data set.
type Analysis struct {
	*Dataset

	Sample   []int              // indexes of sampled records
	Queries  [][]byte           // tags of sampled records
	Pool     *hd.Pool           // unique tags of all records
	Nearest  []int              // nearest distances of queries
	Chimeras []hd.ChimeraRecord // chimeric search records of both orientations
}

// newAnalysis draws the sample and builds the reference pool.
func newAnalysis(ds *Dataset, opt *AnalysisOptions) (*Analysis, error) {
	sample, err := hd.DrawSample(len(ds.Records), opt.SampleSize, rand.New(rand.NewSource(opt.Seed)))
	if err != nil {
		return nil, err
	}

	a := &Analysis{Dataset: ds, Sample: sample}
	a.Queries = make([][]byte, len(sample))
	for i, j := range sample {
		a.Queries[i] = ds.Records[j].Seq
	}
	a.Pool = hd.NewReferencePool(tags.Seqs(ds.Records))
	return a, nil
}

func dispatchOptions(opt *AnalysisOptions, progress func(int)) *hd.DispatchOptions {
	return &hd.DispatchOptions{
		Threads:  opt.NumCPUs,
		Chimera:  hd.ChimeraOptions{StrictZeroSum: opt.StrictZeroSum},
		Progress: progress,
	}
}

// runNearest computes whole-tag nearest distances of the sample.
func (a *Analysis) runNearest(dopt *hd.DispatchOptions) (err error) {
	a.Nearest, err = hd.NearestDistances(a.Queries, a.Pool, dopt)
	return errors.Wrap(err, "whole-tag distances")
}

// runChimeras runs the half-wise search of the sample in both orientations.
func (a *Analysis) runChimeras(dopt *hd.DispatchOptions) (err error) {
	a.Chimeras, err = hd.ChimeraAnalysis(a.Queries, a.Pool, dopt)
	return errors.Wrap(err, "chimeric search")
}

// analyze runs both searches. progress, if not nil, is called after each
// query of each run, i.e., 3 times of the sample size in total.
func analyze(ds *Dataset, opt *AnalysisOptions, progress func(int)) (*Analysis, error) {
	a, err := newAnalysis(ds, opt)
	if err != nil {
		return nil, err
	}
	dopt := dispatchOptions(opt, progress)
	if err = a.runNearest(dopt); err != nil {
		return nil, err
	}
	if err = a.runChimeras(dopt); err != nil {
		return nil, err
	}
	return a, nil
}

// SampleFamilySizes returns family sizes of the sampled records,
// followed by those of the ba strands in DCS mode.
func (a *Analysis) SampleFamilySizes() []int {
	n := len(a.Sample)
	if a.FamilySizesBA != nil {
		n <<= 1
	}
	fs := make([]int, 0, n)
	for _, j := range a.Sample {
		fs = append(fs, a.Dataset.Records[j].FamilySize)
	}
	if a.FamilySizesBA != nil {
		for _, j := range a.Sample {
			fs = append(fs, a.FamilySizesBA[j])
		}
	}
	return fs
}

// NearestDistances returns nearest distances aligned with SampleFamilySizes.
func (a *Analysis) NearestDistances() []int {
	if a.FamilySizesBA == nil {
		return a.Nearest
	}
	dists := make([]int, 0, len(a.Nearest)<<1)
	dists = append(dists, a.Nearest...)
	dists = append(dists, a.Nearest...)
	return dists
}

// QueryFamilySizes returns family sizes of sampled records,
// indexed by hd.ChimeraRecord.SampleIndex.
func (a *Analysis) QueryFamilySizes() []int {
	fs := make([]int, len(a.Sample))
	for i, j := range a.Sample {
		fs[i] = a.Dataset.Records[j].FamilySize
	}
	return fs
}

// zeroHalfRecords returns records with an identical half.
func zeroHalfRecords(rs []hd.ChimeraRecord) []hd.ChimeraRecord {
	kept := make([]hd.ChimeraRecord, 0, len(rs)>>2)
	for _, r := range rs {
		if r.ZeroHalf {
			kept = append(kept, r)
		}
	}
	return kept
}
