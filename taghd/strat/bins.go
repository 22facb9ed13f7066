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
	"math"

	"github.com/pkg/errors"
	"github.com/rdleal/intervalst/interval"
)

// Unbounded is used as the upper limit of the last bin.
const Unbounded = math.MaxInt32

// Bin is a closed range of integer values with a name.
type Bin struct {
	Min, Max int
	Name     string
}

// FamilySizeBins are family size groups for distance histograms.
var FamilySizeBins = []Bin{
	{1, 1, "FS=1"},
	{2, 2, "FS=2"},
	{3, 3, "FS=3"},
	{4, 4, "FS=4"},
	{5, 10, "FS=5-10"},
	{11, Unbounded, "FS>10"},
}

// DistanceBins are distance groups for family size distributions.
var DistanceBins = []Bin{
	{1, 1, "HD=1"},
	{2, 2, "HD=2"},
	{3, 3, "HD=3"},
	{4, 4, "HD=4"},
	{5, 8, "HD=5-8"},
	{9, Unbounded, "HD>8"},
}

// DiffBins are groups of differences between half distances, including 0.
var DiffBins = append([]Bin{{0, 0, "diff=0"}}, renameBins(DistanceBins, "HD", "diff")...)

// RelDiffBins are groups of relative differences, with values multiplied by 10.
var RelDiffBins = []Bin{
	{0, 0, "diff=0"},
	{1, 1, "diff=0.1"},
	{2, 2, "diff=0.2"},
	{3, 3, "diff=0.3"},
	{4, 4, "diff=0.4"},
	{5, 8, "diff=0.5-0.8"},
	{9, Unbounded, "diff>0.8"},
}

// MaxFamilySize is the cap of family sizes in family size distributions.
const MaxFamilySize = 20

func renameBins(bins []Bin, old, new string) []Bin {
	renamed := make([]Bin, len(bins))
	for i, b := range bins {
		renamed[i] = b
		if len(b.Name) >= len(old) && b.Name[:len(old)] == old {
			renamed[i].Name = new + b.Name[len(old):]
		}
	}
	return renamed
}

// Grouper assigns values to bins.
type Grouper struct {
	bins []Bin
	tree *interval.SearchTree[int, int]
}

// NewGrouper creates a Grouper from non-overlapping bins.
func NewGrouper(bins []Bin) (*Grouper, error) {
	// Ranges are saved in doubled coordinates, [2*min, 2*max+1],
	// so that a single-value bin is never an empty range.
	tree := interval.NewSearchTree[int, int](func(x, y int) int { return x - y })
	for i, b := range bins {
		if b.Min > b.Max {
			return nil, errors.Errorf("invalid bin %s: [%d, %d]", b.Name, b.Min, b.Max)
		}
		if _, ok := tree.AnyIntersection(b.Min<<1, b.Max<<1+1); ok {
			return nil, errors.Errorf("overlapped bin: %s", b.Name)
		}
		if err := tree.Insert(b.Min<<1, b.Max<<1+1, i); err != nil {
			return nil, errors.Wrapf(err, "bin %s", b.Name)
		}
	}
	return &Grouper{bins: bins, tree: tree}, nil
}

// MustNewGrouper is like NewGrouper but panics on error.
func MustNewGrouper(bins []Bin) *Grouper {
	g, err := NewGrouper(bins)
	if err != nil {
		panic(err)
	}
	return g
}

// Group returns the index of the bin containing v.
func (g *Grouper) Group(v int) (int, bool) {
	return g.tree.AnyIntersection(v<<1, v<<1+1)
}

// Names returns names of bins.
func (g *Grouper) Names() []string {
	names := make([]string, len(g.bins))
	for i, b := range g.bins {
		names[i] = b.Name
	}
	return names
}

// Len returns the number of bins.
func (g *Grouper) Len() int { return len(g.bins) }

// RelDiffKey converts a relative difference with one decimal to an integer.
func RelDiffKey(v float64) int {
	return int(math.Round(v * 10))
}

// CapFamilySize caps family sizes at MaxFamilySize.
func CapFamilySize(fs int) int {
	if fs > MaxFamilySize-1 {
		return MaxFamilySize
	}
	return fs
}
