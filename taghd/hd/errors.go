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

import "fmt"

// ConfigError means invalid invocation parameters, e.g., a sample size
// larger than the dataset or a non-positive number of threads.
// The batch never starts.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Msg
}

func configErrorf(format string, a ...interface{}) error {
	return &ConfigError{Msg: fmt.Sprintf(format, a...)}
}

// InsufficientDataError means a query has no distinct sequence to compare with,
// i.e., every reference entry is identical to the query.
type InsufficientDataError struct {
	Query string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("no distinct reference sequence for query: %s", e.Query)
}

// DegenerateMatchError means both half distances of a chimeric match are 0,
// so the relative difference is undefined.
// It is only returned when ChimeraOptions.StrictZeroSum is on.
type DegenerateMatchError struct {
	Query string
	Match string
}

func (e *DegenerateMatchError) Error() string {
	return fmt.Sprintf("both halves of query %s are identical to those of %s, relative difference undefined",
		e.Query, e.Match)
}
