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

	"github.com/zeebo/wyhash"
)

// seed for hashing sequences
var hashSeed uint64 = 1

// ExclusionIndex locates all occurrences of a sequence in a pool,
// so that a query could be compared with every other sequence but itself.
type ExclusionIndex struct {
	pool *Pool
	m    map[uint64][]int // hash -> positions in ascending order
}

// NewExclusionIndex builds the index for a pool.
func NewExclusionIndex(p *Pool) *ExclusionIndex {
	m := make(map[uint64][]int, p.Len())
	var h uint64
	for i, s := range p.seqs {
		h = wyhash.Hash(s, hashSeed)
		m[h] = append(m[h], i)
	}
	return &ExclusionIndex{pool: p, m: m}
}

// Occurrences returns positions of all sequences identical to q in ascending order.
func (x *ExclusionIndex) Occurrences(q []byte) []int {
	locs, ok := x.m[wyhash.Hash(q, hashSeed)]
	if !ok {
		return nil
	}

	var collision bool
	for _, i := range locs {
		if !bytes.Equal(x.pool.seqs[i], q) {
			collision = true
			break
		}
	}
	if !collision {
		return locs
	}

	occ := make([]int, 0, len(locs))
	for _, i := range locs {
		if bytes.Equal(x.pool.seqs[i], q) {
			occ = append(occ, i)
		}
	}
	return occ
}

// Candidates appends positions of all sequences different from q to buf[:0]
// and returns it. The relative order is kept, so it could be used to index
// any array aligned with the pool.
func (x *ExclusionIndex) Candidates(q []byte, buf []int) []int {
	buf = buf[:0]
	occ := x.Occurrences(q)
	var j int
	for i := range x.pool.seqs {
		if j < len(occ) && occ[j] == i {
			j++
			continue
		}
		buf = append(buf, i)
	}
	return buf
}
