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

import "testing"

func newRecords(fs []int, seqs []string) []*Record {
	recs := make([]*Record, len(seqs))
	for i, s := range seqs {
		recs[i] = &Record{FamilySize: fs[i], Seq: []byte(s)}
	}
	return recs
}

func TestFilterFamilySize(t *testing.T) {
	recs := newRecords([]int{1, 2, 3, 10, 25}, []string{"A", "C", "G", "T", "N"})

	cases := []struct {
		min, max int
		n        int
	}{
		{1, 0, 5},
		{2, 0, 4},
		{1, 3, 3},
		{3, 10, 2},
		{30, 0, 0},
	}
	for _, c := range cases {
		kept := FilterFamilySize(recs, c.min, c.max)
		if len(kept) != c.n {
			t.Errorf("[%d, %d]: expected %d records, got %d", c.min, c.max, c.n, len(kept))
		}
		for _, r := range kept {
			if r.FamilySize < c.min || (c.max > 0 && r.FamilySize > c.max) {
				t.Errorf("[%d, %d]: unexpected family size: %d", c.min, c.max, r.FamilySize)
			}
		}
	}
}

func TestDuplexPairs(t *testing.T) {
	recs := newRecords(
		[]int{1, 2, 3, 4, 5, 6, 7},
		[]string{"CCCC", "AAAA", "GGGG", "AAAA", "CCCC", "TTTT", "AAAA"})
	pairs := DuplexPairs(recs)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if string(pairs[0].AB.Seq) != "CCCC" || pairs[0].AB.FamilySize != 1 || pairs[0].BA.FamilySize != 5 {
		t.Errorf("unexpected pair: %+v, %+v", pairs[0].AB, pairs[0].BA)
	}
	if string(pairs[1].AB.Seq) != "AAAA" || pairs[1].AB.FamilySize != 2 || pairs[1].BA.FamilySize != 4 {
		t.Errorf("unexpected pair: %+v, %+v", pairs[1].AB, pairs[1].BA)
	}

	// interleaved strands and a third occurrence
	pairs = DuplexPairs(newRecords(
		[]int{1, 2, 3, 4, 5},
		[]string{"AAAA", "CCCC", "AAAA", "CCCC", "AAAA"}))
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	for i, e := range [][3]interface{}{{"AAAA", 1, 3}, {"CCCC", 2, 4}} {
		p := pairs[i]
		if string(p.AB.Seq) != e[0].(string) || string(p.BA.Seq) != e[0].(string) ||
			p.AB.FamilySize != e[1].(int) || p.BA.FamilySize != e[2].(int) {
			t.Errorf("unexpected pair: %+v, %+v", p.AB, p.BA)
		}
	}

	if len(DuplexPairs(newRecords([]int{1, 1}, []string{"AAAA", "CCCC"}))) != 0 {
		t.Errorf("expected no pairs")
	}
}

func TestShorten(t *testing.T) {
	cases := []struct {
		seq   string
		n     int
		short string
	}{
		{"ACGTACGTTTGGCCAA", 8, "ACGTACGTTTGGCCAA"},
		{"ACGTACGTTTGGCCAA", 4, "GTACGGCC"},
		{"ACGTACGTTTGGCCAA", 3, "GTAGGC"},     // flanks: 2 + 3
		{"ACGTACGTTTGGCCAAC", 4, "GTACGGCCA"}, // odd length
		{"ACGTACGTTTGGCCAA", 0, "ACGTACGTTTGGCCAA"},
	}
	for _, c := range cases {
		recs, err := Shorten(newRecords([]int{2}, []string{c.seq}), c.n)
		if err != nil {
			t.Fatal(err)
		}
		if string(recs[0].Seq) != c.short {
			t.Errorf("%s, %d: expected %s, got %s", c.seq, c.n, c.short, recs[0].Seq)
		}
		if recs[0].FamilySize != 2 {
			t.Errorf("family size lost")
		}
	}

	if _, err := Shorten(newRecords([]int{1}, []string{"ACGTACGT"}), 5); err == nil {
		t.Errorf("subset length larger than half should be rejected")
	}
}
