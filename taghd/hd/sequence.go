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
	"math/bits"

	"github.com/shenwei356/kmers"
)

// MaxPackedHalf is the maximum length of a half that could be packed into an uint64.
const MaxPackedHalf = 32

// Hamming returns the number of positions where a and b differ.
// Sequences are expected to have the same length,
// extra symbols of the longer one are all counted as differences.
func Hamming(a, b []byte) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	d := len(b) - len(a)
	for i, c := range a {
		if c != b[i] {
			d++
		}
	}
	return d
}

// Midpoint returns the split point of a sequence of length n.
// For odd lengths, the second half is one symbol longer.
func Midpoint(n int) int {
	return n / 2
}

// SplitHalves splits a sequence into two halves at the midpoint.
// The returned slices share the underlying array of s.
func SplitHalves(s []byte) ([]byte, []byte) {
	m := Midpoint(len(s))
	return s[:m], s[m:]
}

// 0b0101...01, the lower bit of every 2-bit base
const lowBits uint64 = 0x5555555555555555

// hamming2 returns the Hamming distance of two 2-bit packed sequences of the same length.
func hamming2(a, b uint64) int {
	x := a ^ b
	return bits.OnesCount64((x | x>>1) & lowBits)
}

// packable checks if s is not empty, not longer than 32 and consists of ACGT only.
// kmers.Encode treats degenerate bases as one of ACGT, so they are rejected here.
func packable(s []byte) bool {
	if len(s) == 0 || len(s) > MaxPackedHalf {
		return false
	}
	for _, b := range s {
		switch b {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}

// encodeHalves packs the two halves of s, ok is false if any half is not packable.
func encodeHalves(s []byte) (a, b uint64, ok bool) {
	ha, hb := SplitHalves(s)
	if !packable(ha) || !packable(hb) {
		return 0, 0, false
	}
	var err error
	if a, err = kmers.Encode(ha); err != nil {
		return 0, 0, false
	}
	if b, err = kmers.Encode(hb); err != nil {
		return 0, 0, false
	}
	return a, b, true
}
