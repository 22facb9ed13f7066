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

package hd

import "math"

// Orientation tells which half of a tag is used in the first-stage search.
type Orientation uint8

const (
	// PrimaryHalfA uses the first half.
	PrimaryHalfA Orientation = iota
	// PrimaryHalfB uses the second half.
	PrimaryHalfB
)

// Orientations are the two orientations in the order of outputting.
var Orientations = [2]Orientation{PrimaryHalfA, PrimaryHalfB}

func (o Orientation) String() string {
	if o == PrimaryHalfB {
		return "b"
	}
	return "a"
}

// ChimeraOptions contains options of the chimeric search.
type ChimeraOptions struct {
	// By default, the relative difference of a match with both half distances
	// being 0 is 0. StrictZeroSum returns a DegenerateMatchError instead.
	StrictZeroSum bool
}

// ChimeraRecord is a match between a query and one of the
// nearest candidates found with the primary half.
type ChimeraRecord struct {
	Query       []byte // the query tag
	SampleIndex int    // index of the query in the sample
	Orientation Orientation
	Match       []byte // the matched reference tag

	PrimaryDist   int // distance of the primary halves
	CompanionDist int // distance of the companion halves

	Sum      int     // PrimaryDist + CompanionDist
	Diff     int     // |PrimaryDist - CompanionDist|
	RelDiff  float64 // Diff / Sum, rounded to one decimal
	ZeroHalf bool    // at least one of the half distances is 0
}

// NewChimeraRecord computes the derived values of a match.
func NewChimeraRecord(q, match []byte, o Orientation, d1, d2 int, strict bool) (ChimeraRecord, error) {
	r := ChimeraRecord{
		Query:         q,
		Orientation:   o,
		Match:         match,
		PrimaryDist:   d1,
		CompanionDist: d2,
		Sum:           d1 + d2,
		ZeroHalf:      d1 == 0 || d2 == 0,
	}
	if d1 > d2 {
		r.Diff = d1 - d2
	} else {
		r.Diff = d2 - d1
	}

	if r.Sum == 0 {
		if strict {
			return r, &DegenerateMatchError{Query: string(q), Match: string(match)}
		}
		return r, nil
	}
	r.RelDiff = Round1(float64(r.Diff) / float64(r.Sum))
	return r, nil
}

// DistA returns the distance of the first halves.
func (r *ChimeraRecord) DistA() int {
	if r.Orientation == PrimaryHalfB {
		return r.CompanionDist
	}
	return r.PrimaryDist
}

// DistB returns the distance of the second halves.
func (r *ChimeraRecord) DistB() int {
	if r.Orientation == PrimaryHalfB {
		return r.PrimaryDist
	}
	return r.CompanionDist
}

// Round1 rounds a float to one decimal, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ChimeraSearcher performs the half-wise search of queries against a pool.
// It holds buffers, so a searcher should not be shared by goroutines.
type ChimeraSearcher struct {
	pool *Pool
	idx  *ExclusionIndex
	opt  ChimeraOptions

	cands []int
	ties  []int
}

// NewChimeraSearcher creates a searcher. The pool and the index are only read.
func NewChimeraSearcher(p *Pool, idx *ExclusionIndex, opt *ChimeraOptions) *ChimeraSearcher {
	s := &ChimeraSearcher{
		pool:  p,
		idx:   idx,
		cands: make([]int, 0, p.Len()),
		ties:  make([]int, 0, 8),
	}
	if opt != nil {
		s.opt = *opt
	}
	return s
}

// Search finds the candidates nearest to the primary half of q,
// excluding all reference sequences identical to q,
// and appends one record per tied candidate to out.
func (s *ChimeraSearcher) Search(q []byte, sampleIndex int, o Orientation, out []ChimeraRecord) ([]ChimeraRecord, error) {
	s.cands = s.idx.Candidates(q, s.cands)
	if len(s.cands) == 0 {
		return out, &InsufficientDataError{Query: string(q)}
	}

	p := s.pool
	qq := p.newQuery(q)
	second := o == PrimaryHalfB

	// primary halves, keeping all candidates with the minimum distance
	s.ties = s.ties[:0]
	min := -1
	var d int
	for _, i := range s.cands {
		d = p.distHalf(&qq, i, second)
		if min < 0 || d < min {
			min = d
			s.ties = s.ties[:0]
		}
		if d == min {
			s.ties = append(s.ties, i)
		}
	}

	// companion halves of the tied candidates
	var r ChimeraRecord
	var err error
	for _, i := range s.ties {
		d = p.distHalf(&qq, i, !second)
		r, err = NewChimeraRecord(q, p.seqs[i], o, min, d, s.opt.StrictZeroSum)
		if err != nil {
			return out, err
		}
		r.SampleIndex = sampleIndex
		out = append(out, r)
	}
	return out, nil
}
