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
	"bytes"
	"math/rand"
	"time"

	"github.com/shenwei356/kmers"
	"github.com/shenwei356/taghd/taghd/util"
	"github.com/twotwotwo/sorts"
)

// Pool is a read-only array of reference sequences.
// If all sequences have the same length and both halves consist of ACGT
// and are not longer than 32, the halves are also saved as 2-bit codes.
type Pool struct {
	seqs [][]byte

	packed bool
	length int      // length of packed sequences
	codesA []uint64 // 2-bit codes of the first halves
	codesB []uint64 // 2-bit codes of the second halves
}

// NewPool creates a pool from the given sequences, duplicates are kept.
func NewPool(seqs [][]byte) *Pool {
	p := &Pool{seqs: seqs}
	p.pack()
	return p
}

// NewReferencePool creates a pool of unique sequences in ascending order.
// The input slice is not modified.
func NewReferencePool(all [][]byte) *Pool {
	return NewPool(UniqSeqs(all))
}

func (p *Pool) pack() {
	if len(p.seqs) == 0 {
		return
	}
	p.length = len(p.seqs[0])
	codesA := make([]uint64, len(p.seqs))
	codesB := make([]uint64, len(p.seqs))
	var ok bool
	for i, s := range p.seqs {
		if len(s) != p.length {
			return
		}
		codesA[i], codesB[i], ok = encodeHalves(s)
		if !ok {
			return
		}
	}
	p.codesA, p.codesB = codesA, codesB
	p.packed = true
}

// Len returns the number of sequences.
func (p *Pool) Len() int { return len(p.seqs) }

// Seq returns the i-th sequence.
func (p *Pool) Seq(i int) []byte { return p.seqs[i] }

// Seqs returns all sequences, they should not be modified.
func (p *Pool) Seqs() [][]byte { return p.seqs }

// Packed tells whether 2-bit codes are used in distance computation.
func (p *Pool) Packed() bool { return p.packed }

// query is a query sequence prepared for comparing with a pool.
type query struct {
	seq    []byte
	a, b   []byte // halves
	ca, cb uint64 // 2-bit codes of halves
	packed bool
}

func (p *Pool) newQuery(s []byte) query {
	q := query{seq: s}
	q.a, q.b = SplitHalves(s)
	if p.packed && len(s) == p.length {
		q.ca, q.cb, q.packed = encodeHalves(s)
	}
	return q
}

// distHalf returns the distance between a half of the query and the same half of the i-th sequence.
func (p *Pool) distHalf(q *query, i int, second bool) int {
	if q.packed {
		if second {
			return hamming2(q.cb, p.codesB[i])
		}
		return hamming2(q.ca, p.codesA[i])
	}
	ra, rb := SplitHalves(p.seqs[i])
	if second {
		return Hamming(q.b, rb)
	}
	return Hamming(q.a, ra)
}

// dist returns the distance between the whole query and the i-th sequence.
func (p *Pool) dist(q *query, i int) int {
	if q.packed {
		return hamming2(q.ca, p.codesA[i]) + hamming2(q.cb, p.codesB[i])
	}
	return Hamming(q.seq, p.seqs[i])
}

// UniqSeqs returns unique sequences in ascending order.
func UniqSeqs(all [][]byte) [][]byte {
	if len(all) == 0 {
		return [][]byte{}
	}

	// short ACGT sequences are deduplicated via their 2-bit codes
	k := len(all[0])
	codes := make([]uint64, 0, len(all))
	var code uint64
	var err error
	for _, s := range all {
		if len(s) != k || !packable(s) {
			codes = nil
			break
		}
		code, err = kmers.Encode(s)
		if err != nil {
			codes = nil
			break
		}
		codes = append(codes, code)
	}
	if codes != nil {
		util.UniqUint64s(&codes)
		seqs := make([][]byte, len(codes))
		for i, code := range codes {
			seqs[i] = kmers.Decode(code, k)
		}
		return seqs
	}

	seqs := make([][]byte, len(all))
	copy(seqs, all)
	sorts.Quicksort(byteSlices(seqs))

	j := 1
	for i := 1; i < len(seqs); i++ {
		if bytes.Equal(seqs[i], seqs[j-1]) {
			continue
		}
		seqs[j] = seqs[i]
		j++
	}
	return seqs[:j]
}

type byteSlices [][]byte

func (s byteSlices) Len() int           { return len(s) }
func (s byteSlices) Less(i, j int) bool { return bytes.Compare(s[i], s[j]) < 0 }
func (s byteSlices) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// DrawSample returns indexes of the sample drawn from n records.
// size 0 means all records in the original order,
// otherwise size distinct indexes are drawn uniformly without replacement.
func DrawSample(n, size int, r *rand.Rand) ([]int, error) {
	if size < 0 {
		return nil, configErrorf("sample size should not be negative: %d", size)
	}
	if size > n {
		return nil, configErrorf("sample size (%d) is larger than the number of tags (%d)", size, n)
	}

	if size == 0 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}

	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return r.Perm(n)[:size], nil
}
