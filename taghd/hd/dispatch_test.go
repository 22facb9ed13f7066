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

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
)

func TestSplitChunks(t *testing.T) {
	cases := []struct {
		n, k   int
		chunks [][2]int
	}{
		{0, 4, nil},
		{5, 0, nil},
		{10, 1, [][2]int{{0, 10}}},
		{10, 3, [][2]int{{0, 4}, {4, 7}, {7, 10}}},
		{10, 4, [][2]int{{0, 3}, {3, 6}, {6, 8}, {8, 10}}},
		{3, 5, [][2]int{{0, 1}, {1, 2}, {2, 3}}},
	}
	for _, c := range cases {
		chunks := SplitChunks(c.n, c.k)
		if len(chunks) != len(c.chunks) {
			t.Errorf("%d/%d: expected %v, got %v", c.n, c.k, c.chunks, chunks)
			continue
		}
		for i := range chunks {
			if chunks[i] != c.chunks[i] {
				t.Errorf("%d/%d: expected %v, got %v", c.n, c.k, c.chunks, chunks)
				break
			}
		}
	}
}

func TestNearestDistancesOrder(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	all := randSeqs(r, 500, 12, bases)
	p := NewReferencePool(all)

	idx, err := DrawSample(len(all), 60, r)
	if err != nil {
		t.Fatal(err)
	}
	queries := make([][]byte, len(idx))
	for i, j := range idx {
		queries[i] = all[j]
	}

	expected := make([]int, len(queries))
	for i, q := range queries {
		expected[i], err = NearestDistance(q, p)
		if err != nil {
			t.Fatal(err)
		}
	}

	for _, threads := range []int{1, 2, 3, 7, 16, 59, 60, 100} {
		var n int64
		opt := &DispatchOptions{
			Threads:  threads,
			Progress: func(i int) { atomic.AddInt64(&n, int64(i)) },
		}
		dists, err := NearestDistances(queries, p, opt)
		if err != nil {
			t.Fatal(err)
		}
		if !equalInts(dists, expected) {
			t.Errorf("threads %d: results differ from the single-threaded computation", threads)
		}
		if int(n) != len(queries) {
			t.Errorf("threads %d: progress %d != %d", threads, n, len(queries))
		}
	}
}

func TestChimeraAnalysisOrder(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	all := randSeqs(r, 300, 8, bases)
	p := NewReferencePool(all)
	queries := all[:40]

	idx := NewExclusionIndex(p)
	s := NewChimeraSearcher(p, idx, nil)
	var expected []ChimeraRecord
	var err error
	for _, o := range Orientations {
		for i, q := range queries {
			expected, err = s.Search(q, i, o, expected)
			if err != nil {
				t.Fatal(err)
			}
		}
	}
	if len(expected) < 2*len(queries) {
		t.Fatalf("at least one record per query and orientation expected: %d", len(expected))
	}

	for _, threads := range []int{1, 2, 3, 8, 40} {
		rs, err := ChimeraAnalysis(queries, p, &DispatchOptions{Threads: threads})
		if err != nil {
			t.Fatal(err)
		}
		if len(rs) != len(expected) {
			t.Errorf("threads %d: expected %d records, got %d", threads, len(expected), len(rs))
			continue
		}
		for i := range rs {
			a, b := rs[i], expected[i]
			if a.SampleIndex != b.SampleIndex || a.Orientation != b.Orientation ||
				string(a.Match) != string(b.Match) ||
				a.PrimaryDist != b.PrimaryDist || a.CompanionDist != b.CompanionDist {
				t.Errorf("threads %d: record %d differs: %+v != %+v", threads, i, a, b)
				break
			}
		}
	}
}

func TestDispatchFailure(t *testing.T) {
	p := NewReferencePool(toSeqs("AACC", "AAGG", "AATT"))
	queries := toSeqs("AACC", "AAGG", "GGGG", "AATT")
	// AACC has no other sequence to compare with
	single := NewPool(toSeqs("AACC"))

	_, err := NearestDistances(queries, p, &DispatchOptions{Threads: 2})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	_, err = NearestDistances(toSeqs("AAGG", "AACC"), single, &DispatchOptions{Threads: 2})
	if _, ok := errors.Cause(err).(*InsufficientDataError); !ok {
		t.Errorf("expected InsufficientDataError, got %v", err)
	}

	_, err = ChimeraAnalysis(toSeqs("AAGG", "AACC"), single, &DispatchOptions{Threads: 2})
	if _, ok := errors.Cause(err).(*InsufficientDataError); !ok {
		t.Errorf("expected InsufficientDataError, got %v", err)
	}

	for _, threads := range []int{0, -1} {
		_, err = NearestDistances(queries, p, &DispatchOptions{Threads: threads})
		if _, ok := errors.Cause(err).(*ConfigError); !ok {
			t.Errorf("expected ConfigError, got %v", err)
		}
		_, err = ChimeraAnalysis(queries, p, &DispatchOptions{Threads: threads})
		if _, ok := errors.Cause(err).(*ConfigError); !ok {
			t.Errorf("expected ConfigError, got %v", err)
		}
	}
}

func TestEmptySample(t *testing.T) {
	p := NewReferencePool(toSeqs("AACC", "AAGG"))
	dists, err := NearestDistances(nil, p, &DispatchOptions{Threads: 4})
	if err != nil || len(dists) != 0 {
		t.Errorf("expected no results, got %v, %v", dists, err)
	}
	rs, err := ChimeraAnalysis(nil, p, &DispatchOptions{Threads: 4})
	if err != nil || len(rs) != 0 {
		t.Errorf("expected no results, got %v, %v", rs, err)
	}
}
