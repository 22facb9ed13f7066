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

// NearestDistance returns the minimum nonzero Hamming distance between q
// and the sequences in the pool.
//
// Zero distances are always discarded, so the query itself, which is usually
// part of the pool, does not need to be excluded explicitly.
func NearestDistance(q []byte, p *Pool) (int, error) {
	qq := p.newQuery(q)
	min := -1
	var d int
	for i := range p.seqs {
		d = p.dist(&qq, i)
		if d == 0 {
			continue
		}
		if min < 0 || d < min {
			min = d
			if min == 1 { // can't be smaller
				break
			}
		}
	}
	if min < 0 {
		return 0, &InsufficientDataError{Query: string(q)}
	}
	return min, nil
}
