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

package tags

import (
	"fmt"

	"github.com/shenwei356/taghd/taghd/hd"
)

// FilterFamilySize keeps records with family sizes in the range of [min, max],
// max of 0 means no upper limit.
func FilterFamilySize(recs []*Record, min, max int) []*Record {
	kept := make([]*Record, 0, len(recs))
	for _, r := range recs {
		if r.FamilySize < min {
			continue
		}
		if max > 0 && r.FamilySize > max {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// Duplex is a tag observed on both strands, i.e.,
// a duplex consensus sequence (DCS).
type Duplex struct {
	AB *Record
	BA *Record
}

// DuplexPairs returns tags appearing at least twice, in the order of their
// first appearance. The first occurrence is treated as the ab strand and the
// second one as the ba strand, more occurrences are ignored.
//
// Strands are paired per sequence, not by alternating all duplicated rows in
// file order. The two ways agree only when both strands of each tag are
// adjacent and no tag appears more than twice. For example, with rows
// A, B, A, B, A, the pairs here are (A1, A2) and (B1, B2), while alternating
// rows would give (A1, B1), (A2, B2) and drop A3.
func DuplexPairs(recs []*Record) []Duplex {
	first := make(map[string]int, len(recs)) // seq -> index in pairs
	pairs := make([]Duplex, 0, len(recs)>>1)
	singles := make([]*Record, 0, len(recs))
	var i int
	var ok bool
	for _, r := range recs {
		i, ok = first[string(r.Seq)]
		if !ok {
			first[string(r.Seq)] = -len(singles) - 1
			singles = append(singles, r)
			continue
		}
		if i < 0 { // the second occurrence
			first[string(r.Seq)] = len(pairs)
			pairs = append(pairs, Duplex{AB: singles[-i-1], BA: r})
		}
	}

	// keep the order of first occurrences
	order := make([]Duplex, 0, len(pairs))
	for _, r := range singles {
		if i = first[string(r.Seq)]; i >= 0 {
			order = append(order, pairs[i])
		}
	}
	return order
}

// Shorten trims each half of tags to n symbols, keeping the central part.
// The flanking length is computed with the first half,
// so for odd tag lengths the second half keeps one more symbol.
func Shorten(recs []*Record, n int) ([]*Record, error) {
	if n <= 0 || len(recs) == 0 {
		return recs, nil
	}
	lenA := hd.Midpoint(len(recs[0].Seq))
	if n > lenA {
		return nil, fmt.Errorf("subset length (%d) should not be larger than half of the tag (%d)", n, lenA)
	}
	start := (lenA - n) / 2
	endTrim := lenA - n - start

	short := make([]*Record, len(recs))
	for i, r := range recs {
		a, b := hd.SplitHalves(r.Seq)
		s := make([]byte, 0, len(a)+len(b)-2*(start+endTrim))
		s = append(s, a[start:len(a)-endTrim]...)
		s = append(s, b[start:len(b)-endTrim]...)
		short[i] = &Record{FamilySize: r.FamilySize, Seq: s, Label: r.Label}
	}
	return short, nil
}
