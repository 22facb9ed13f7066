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
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// DispatchOptions contains options of computing with multiple workers.
type DispatchOptions struct {
	Threads int // number of workers, also the number of chunks

	Chimera ChimeraOptions

	// Progress, if not nil, is called with 1 after each query is finished.
	// It's called in worker goroutines, so it must be safe for concurrent use.
	Progress func(n int)
}

func (opt *DispatchOptions) check() error {
	if opt == nil {
		return configErrorf("dispatch options needed")
	}
	if opt.Threads <= 0 {
		return configErrorf("number of threads should be positive: %d", opt.Threads)
	}
	return nil
}

// SplitChunks splits n items into k contiguous ranges [begin, end),
// where the first n%k ranges have one more item. Empty ranges are dropped.
func SplitChunks(n, k int) [][2]int {
	if n <= 0 || k <= 0 {
		return nil
	}
	size, extra := n/k, n%k
	chunks := make([][2]int, 0, k)
	var begin, end int
	for c := 0; c < k; c++ {
		end = begin + size
		if c < extra {
			end++
		}
		if end > begin {
			chunks = append(chunks, [2]int{begin, end})
		}
		begin = end
	}
	return chunks
}

// runChunks calls fn for every chunk with at most threads goroutines.
// The first error stops the remaining work and is returned.
func runChunks(chunks [][2]int, threads int, fn func(c, begin, end int, stop *atomic.Bool) error) error {
	var wg sync.WaitGroup
	tokens := make(chan int, threads)
	var stop atomic.Bool
	var once sync.Once
	var err0 error

	for c, r := range chunks {
		if stop.Load() {
			break
		}

		wg.Add(1)
		tokens <- 1
		go func(c, begin, end int) {
			defer func() {
				<-tokens
				wg.Done()
			}()
			if stop.Load() {
				return
			}

			if err := fn(c, begin, end, &stop); err != nil {
				once.Do(func() {
					err0 = errors.Wrapf(err, "chunk %d [%d, %d)", c, begin, end)
					stop.Store(true)
				})
			}
		}(c, r[0], r[1])
	}
	wg.Wait()

	return err0
}

// NearestDistances computes the nearest nonzero distance of every query
// to the pool. Results are in the order of queries.
func NearestDistances(queries [][]byte, p *Pool, opt *DispatchOptions) ([]int, error) {
	if err := opt.check(); err != nil {
		return nil, err
	}

	dists := make([]int, len(queries))
	chunks := SplitChunks(len(queries), opt.Threads)

	err := runChunks(chunks, opt.Threads, func(c, begin, end int, stop *atomic.Bool) error {
		var err error
		for i := begin; i < end; i++ {
			if stop.Load() {
				return nil
			}
			dists[i], err = NearestDistance(queries[i], p)
			if err != nil {
				return err
			}
			if opt.Progress != nil {
				opt.Progress(1)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dists, nil
}

// ChimeraAnalysisOrientation runs the chimeric search for all queries in one orientation.
// Records are in the order of queries, and one query might have multiple records.
func ChimeraAnalysisOrientation(queries [][]byte, p *Pool, idx *ExclusionIndex, o Orientation, opt *DispatchOptions) ([]ChimeraRecord, error) {
	if err := opt.check(); err != nil {
		return nil, err
	}

	chunks := SplitChunks(len(queries), opt.Threads)
	results := make([][]ChimeraRecord, len(chunks))

	err := runChunks(chunks, opt.Threads, func(c, begin, end int, stop *atomic.Bool) error {
		s := NewChimeraSearcher(p, idx, &opt.Chimera)
		out := make([]ChimeraRecord, 0, end-begin)
		var err error
		for i := begin; i < end; i++ {
			if stop.Load() {
				return nil
			}
			out, err = s.Search(queries[i], i, o, out)
			if err != nil {
				return err
			}
			if opt.Progress != nil {
				opt.Progress(1)
			}
		}
		results[c] = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	var n int
	for _, rs := range results {
		n += len(rs)
	}
	records := make([]ChimeraRecord, 0, n)
	for _, rs := range results {
		records = append(records, rs...)
	}
	return records, nil
}

// ChimeraAnalysis runs the chimeric search in both orientations,
// records of the first half come first.
func ChimeraAnalysis(queries [][]byte, p *Pool, opt *DispatchOptions) ([]ChimeraRecord, error) {
	if err := opt.check(); err != nil {
		return nil, err
	}

	idx := NewExclusionIndex(p)
	var records []ChimeraRecord
	for _, o := range Orientations {
		rs, err := ChimeraAnalysisOrientation(queries, p, idx, o, opt)
		if err != nil {
			return nil, errors.Wrapf(err, "primary half: %s", o)
		}
		if records == nil {
			records = rs
		} else {
			records = append(records, rs...)
		}
	}
	return records, nil
}
