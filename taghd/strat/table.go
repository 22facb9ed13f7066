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

package strat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Table is a two-dimensional table of counts.
type Table struct {
	Title    string
	RowNames []string
	ColNames []string
	Counts   [][]int // rows x columns
}

// NewTable creates an empty table.
func NewTable(title string, rows, cols []string) *Table {
	counts := make([][]int, len(rows))
	for i := range counts {
		counts[i] = make([]int, len(cols))
	}
	return &Table{Title: title, RowNames: rows, ColNames: cols, Counts: counts}
}

// RowSums returns the sum of each row.
func (t *Table) RowSums() []int {
	sums := make([]int, len(t.RowNames))
	for i, row := range t.Counts {
		for _, c := range row {
			sums[i] += c
		}
	}
	return sums
}

// ColSums returns the sum of each column.
func (t *Table) ColSums() []int {
	sums := make([]int, len(t.ColNames))
	for _, row := range t.Counts {
		for j, c := range row {
			sums[j] += c
		}
	}
	return sums
}

// Total returns the sum of all counts.
func (t *Table) Total() int {
	var n int
	for _, s := range t.RowSums() {
		n += s
	}
	return n
}

// Column returns counts of the j-th column.
func (t *Table) Column(j int) []int {
	col := make([]int, len(t.Counts))
	for i, row := range t.Counts {
		col[i] = row[j]
	}
	return col
}

// Write writes the table with a title line, a header line,
// rows with row sums, and a line of column sums.
func (t *Table) Write(w io.Writer, sep string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", t.Title)
	fmt.Fprintf(bw, "%s%s%ssum\n", sep, strings.Join(t.ColNames, sep), sep)

	rowSums := t.RowSums()
	items := make([]string, 0, len(t.ColNames)+2)
	for i, row := range t.Counts {
		items = items[:0]
		items = append(items, t.RowNames[i])
		for _, c := range row {
			items = append(items, strconv.Itoa(c))
		}
		items = append(items, strconv.Itoa(rowSums[i]))
		fmt.Fprintf(bw, "%s\n", strings.Join(items, sep))
	}

	items = items[:0]
	items = append(items, "sum")
	for _, c := range t.ColSums() {
		items = append(items, strconv.Itoa(c))
	}
	items = append(items, strconv.Itoa(t.Total()))
	fmt.Fprintf(bw, "%s\n\n", strings.Join(items, sep))

	return bw.Flush()
}
