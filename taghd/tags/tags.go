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
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/breader"
)

// Record is a tag observed in the input.
type Record struct {
	FamilySize int    // number of reads collapsed into the tag
	Seq        []byte // tag sequence
	Label      string // strand label, e.g., ab or ba
}

// Seqs returns tag sequences of records.
func Seqs(recs []*Record) [][]byte {
	seqs := make([][]byte, len(recs))
	for i, r := range recs {
		seqs[i] = r.Seq
	}
	return seqs
}

// FamilySizes returns family sizes of records.
func FamilySizes(recs []*Record) []int {
	fs := make([]int, len(recs))
	for i, r := range recs {
		fs[i] = r.FamilySize
	}
	return fs
}

// ReadOptions contains options for reading tag files.
type ReadOptions struct {
	BufferSize int // number of chunks in the buffer
	ChunkSize  int // number of lines in a chunk
}

// DefaultReadOptions is the default ReadOptions.
var DefaultReadOptions = ReadOptions{
	BufferSize: 4,
	ChunkSize:  1000,
}

// ParseLine parses a tab-delimited line with three columns:
// family size, tag sequence and label.
// Empty lines and lines starting with "#" are skipped.
func ParseLine(line string) (*Record, bool, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || line[0] == '#' {
		return nil, false, nil
	}

	items := strings.SplitN(line, "\t", 4)
	if len(items) < 2 {
		return nil, false, fmt.Errorf("at least two columns needed: %s", line)
	}

	fs, err := strconv.Atoi(strings.TrimSpace(items[0]))
	if err != nil || fs < 0 {
		return nil, false, fmt.Errorf("invalid family size: %s", items[0])
	}

	s := bytes.ToUpper([]byte(strings.TrimSpace(items[1])))
	if len(s) == 0 {
		return nil, false, fmt.Errorf("empty tag in line: %s", line)
	}
	if err = seq.DNAredundant.IsValid(s); err != nil {
		return nil, false, errors.Wrapf(err, "invalid tag: %s", s)
	}

	r := &Record{FamilySize: fs, Seq: s}
	if len(items) > 2 {
		r.Label = strings.TrimSpace(items[2])
	}
	return r, true, nil
}

// ReadFile reads tag records from a plain or compressed tabular file, "-" for stdin.
// All tags must have the same length.
func ReadFile(file string, opt *ReadOptions) ([]*Record, error) {
	if opt == nil {
		opt = &DefaultReadOptions
	}

	fn := func(line string) (interface{}, bool, error) {
		return ParseLine(line)
	}
	reader, err := breader.NewBufferedReader(file, opt.BufferSize, opt.ChunkSize, fn)
	if err != nil {
		return nil, errors.Wrapf(err, "reading tag file: %s", file)
	}

	recs := make([]*Record, 0, 1024)
	var err0 error
	for chunk := range reader.Ch {
		if err0 != nil { // just drain the channel
			continue
		}
		if chunk.Err != nil {
			err0 = errors.Wrapf(chunk.Err, "reading tag file: %s", file)
			continue
		}
		for _, data := range chunk.Data {
			recs = append(recs, data.(*Record))
		}
	}
	if err0 != nil {
		return nil, err0
	}

	if _, err = TagLength(recs); err != nil {
		return nil, errors.Wrap(err, file)
	}
	return recs, nil
}

// TagLength returns the length of tags, which should be the same for all records.
func TagLength(recs []*Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	n := len(recs[0].Seq)
	for _, r := range recs[1:] {
		if len(r.Seq) != n {
			return 0, fmt.Errorf("tags of different lengths: %s (%d), %s (%d)",
				recs[0].Seq, n, r.Seq, len(r.Seq))
		}
	}
	return n, nil
}
