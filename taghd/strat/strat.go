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

package strat

import (
	"fmt"
	"strconv"

	"github.com/shenwei356/taghd/taghd/hd"
	"github.com/shenwei356/taghd/taghd/util"
	"gonum.org/v1/gonum/stat"
)

var (
	familySizeGrouper = MustNewGrouper(FamilySizeBins)
	distanceGrouper   = MustNewGrouper(DistanceBins)
	diffGrouper       = MustNewGrouper(DiffBins)
	relDiffGrouper    = MustNewGrouper(RelDiffBins)
)

// byFamilySize counts values (rows) in family size groups (columns).
// Values are converted to row names with the name function.
func byFamilySize(title string, fs []int, vals []int, name func(int) string) *Table {
	keys := util.UniqInts(vals)
	rows := make([]string, len(keys))
	row := make(map[int]int, len(keys))
	for i, k := range keys {
		rows[i] = name(k)
		row[k] = i
	}

	t := NewTable(title, rows, familySizeGrouper.Names())
	for i, v := range vals {
		if j, ok := familySizeGrouper.Group(fs[i]); ok {
			t.Counts[row[v]][j]++
		}
	}
	return t
}

// DistanceByFamilySize counts distances in family size groups.
// prefix is used in row names, e.g., "HD=".
func DistanceByFamilySize(title, prefix string, fs []int, dists []int) *Table {
	return byFamilySize(title, fs, dists, func(v int) string {
		return prefix + strconv.Itoa(v)
	})
}

// RelDiffByFamilySize counts relative differences in family size groups.
func RelDiffByFamilySize(title, prefix string, fs []int, rels []float64) *Table {
	keys := make([]int, len(rels))
	for i, v := range rels {
		keys[i] = RelDiffKey(v)
	}
	return byFamilySize(title, fs, keys, func(k int) string {
		return fmt.Sprintf("%s%.1f", prefix, float64(k)/10)
	})
}

// familySizeDistribution counts capped family sizes (rows) in groups of keys (columns).
func familySizeDistribution(title string, g *Grouper, fs []int, keys []int) *Table {
	capped := make([]int, len(fs))
	for i, v := range fs {
		capped[i] = CapFamilySize(v)
	}
	sizes := util.UniqInts(capped)
	rows := make([]string, len(sizes))
	row := make(map[int]int, len(sizes))
	for i, s := range sizes {
		if s == MaxFamilySize {
			rows[i] = fmt.Sprintf("FS>=%d", MaxFamilySize)
		} else {
			rows[i] = "FS=" + strconv.Itoa(s)
		}
		row[s] = i
	}

	t := NewTable(title, rows, g.Names())
	for i, k := range keys {
		if j, ok := g.Group(k); ok {
			t.Counts[row[capped[i]]][j]++
		}
	}
	return t
}

// FamilySizeByDistance is the family size distribution in groups of distances.
// With diff on, a group of 0 is added for differences of half distances.
func FamilySizeByDistance(title string, fs []int, dists []int, diff bool) *Table {
	g := distanceGrouper
	if diff {
		g = diffGrouper
	}
	return familySizeDistribution(title, g, fs, dists)
}

// FamilySizeByRelDiff is the family size distribution in groups of relative differences.
func FamilySizeByRelDiff(title string, fs []int, rels []float64) *Table {
	keys := make([]int, len(rels))
	for i, v := range rels {
		keys[i] = RelDiffKey(v)
	}
	return familySizeDistribution(title, relDiffGrouper, fs, keys)
}

// WithinTagTable counts distances of whole tags and of both halves.
func WithinTagTable(title string, sums, distA, distB []int) *Table {
	all := make([]int, 0, len(sums)+len(distA)+len(distB))
	all = append(all, sums...)
	all = append(all, distA...)
	all = append(all, distB...)
	keys := util.UniqInts(all)

	rows := make([]string, len(keys))
	row := make(map[int]int, len(keys))
	for i, k := range keys {
		rows[i] = "HD=" + strconv.Itoa(k)
		row[k] = i
	}

	t := NewTable(title, rows, []string{"HD a+b", "HD a", "HD b"})
	for j, vals := range [][]int{sums, distA, distB} {
		for _, v := range vals {
			t.Counts[row[v]][j]++
		}
	}
	return t
}

// ChimeraColumns are columns of chimeric records for stratification.
type ChimeraColumns struct {
	FamilySizes []int
	DistA       []int
	DistB       []int
	Sums        []int
	Diffs       []int
	RelDiffs    []float64
}

// NewChimeraColumns extracts columns from chimeric records, fs are family
// sizes of the sample, indexed by hd.ChimeraRecord.SampleIndex.
// With zeroHalfOnly, only records with an identical half are kept.
func NewChimeraColumns(rs []hd.ChimeraRecord, fs []int, zeroHalfOnly bool) *ChimeraColumns {
	n := len(rs)
	c := &ChimeraColumns{
		FamilySizes: make([]int, 0, n),
		DistA:       make([]int, 0, n),
		DistB:       make([]int, 0, n),
		Sums:        make([]int, 0, n),
		Diffs:       make([]int, 0, n),
		RelDiffs:    make([]float64, 0, n),
	}
	for i := range rs {
		r := &rs[i]
		if zeroHalfOnly && !r.ZeroHalf {
			continue
		}
		c.FamilySizes = append(c.FamilySizes, fs[r.SampleIndex])
		c.DistA = append(c.DistA, r.DistA())
		c.DistB = append(c.DistB, r.DistB())
		c.Sums = append(c.Sums, r.Sum)
		c.Diffs = append(c.Diffs, r.Diff)
		c.RelDiffs = append(c.RelDiffs, r.RelDiff)
	}
	return c
}

// Len returns the number of records.
func (c *ChimeraColumns) Len() int { return len(c.Sums) }

// Summary contains basic statistics of distances.
type Summary struct {
	N     int     `toml:"n"`
	Min   int     `toml:"min"`
	Max   int     `toml:"max"`
	Mean  float64 `toml:"mean"`
	Stdev float64 `toml:"stdev"`
}

// Summarize computes statistics of a list of values.
func Summarize(vals []int) Summary {
	s := Summary{N: len(vals)}
	if s.N == 0 {
		return s
	}

	fs := make([]float64, len(vals))
	s.Min, s.Max = vals[0], vals[0]
	for i, v := range vals {
		fs[i] = float64(v)
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	if s.N == 1 {
		s.Mean = fs[0]
		return s
	}
	s.Mean, s.Stdev = stat.MeanStdDev(fs, nil)
	return s
}
