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
	"path/filepath"
	"testing"

	"github.com/shenwei356/xopen"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line  string
		ok    bool
		isErr bool
		fs    int
		seq   string
		label string
	}{
		{"", false, false, 0, "", ""},
		{"# comment", false, false, 0, "", ""},
		{"3\tAAAACCCC\tab\n", true, false, 3, "AAAACCCC", "ab"},
		{"1\taaaacccc\tba\r\n", true, false, 1, "AAAACCCC", "ba"},
		{"12\tAAAANCCC", true, false, 12, "AAAANCCC", ""},
		{"x\tAAAACCCC\tab", false, true, 0, "", ""},
		{"-1\tAAAACCCC\tab", false, true, 0, "", ""},
		{"1\tAAAA1CCC\tab", false, true, 0, "", ""},
		{"1", false, true, 0, "", ""},
		{"1\t\tab", false, true, 0, "", ""},
	}
	for _, c := range cases {
		r, ok, err := ParseLine(c.line)
		if (err != nil) != c.isErr {
			t.Errorf("%q: unexpected error status: %v", c.line, err)
			continue
		}
		if ok != c.ok {
			t.Errorf("%q: expected ok=%v", c.line, c.ok)
			continue
		}
		if !ok {
			continue
		}
		if r.FamilySize != c.fs || string(r.Seq) != c.seq || r.Label != c.label {
			t.Errorf("%q: unexpected record: %+v", c.line, r)
		}
	}
}

func writeFile(t *testing.T, file string, content string) {
	fh, err := xopen.Wopen(file)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = fh.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err = fh.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	content := "# fs\ttag\tlabel\n" +
		"1\tAAAACCCC\tab\n" +
		"3\tAAAACCCC\tba\n" +
		"\n" +
		"2\tGGGGTTTT\tab\n"

	for _, name := range []string{"tags.tabular", "tags.tabular.gz"} {
		file := filepath.Join(dir, name)
		writeFile(t, file, content)

		recs, err := ReadFile(file, &ReadOptions{BufferSize: 2, ChunkSize: 1})
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 3 {
			t.Fatalf("%s: expected 3 records, got %d", name, len(recs))
		}
		expected := []string{"AAAACCCC", "AAAACCCC", "GGGGTTTT"}
		for i, r := range recs {
			if string(r.Seq) != expected[i] {
				t.Errorf("%s: record %d: expected %s, got %s", name, i, expected[i], r.Seq)
			}
		}
		if fs := FamilySizes(recs); fs[0] != 1 || fs[1] != 3 || fs[2] != 2 {
			t.Errorf("%s: unexpected family sizes: %v", name, fs)
		}
	}

	file := filepath.Join(dir, "bad.tabular")
	writeFile(t, file, "1\tAAAACCCC\tab\n1\tAAAACC\tab\n")
	if _, err := ReadFile(file, nil); err == nil {
		t.Errorf("tags of different lengths should be rejected")
	}

	writeFile(t, file, "1\tAAAACCCC\tab\nx\tAAAACCCC\tab\n")
	if _, err := ReadFile(file, nil); err == nil {
		t.Errorf("invalid family size should be rejected")
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.tabular"), nil); err == nil {
		t.Errorf("missing file should be reported")
	}
}

func TestTagLength(t *testing.T) {
	n, err := TagLength(nil)
	if err != nil || n != 0 {
		t.Errorf("unexpected result: %d, %v", n, err)
	}
	n, err = TagLength([]*Record{{Seq: []byte("ACGT")}, {Seq: []byte("TTTT")}})
	if err != nil || n != 4 {
		t.Errorf("unexpected result: %d, %v", n, err)
	}
}
