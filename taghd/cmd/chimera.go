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

package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var chimeraCmd = &cobra.Command{
	Use:   "chimera",
	Short: "Search the nearest tags with each half of tags to detect chimeras",
	Long: `Search the nearest tags with each half of tags to detect chimeras

For each sampled tag and each half (a and b) of it:
  1. All unique tags identical to the query are excluded.
  2. The tags with the minimum Hamming distance of this half are found,
     all of them are kept in case of ties.
  3. The Hamming distance of the other half is computed for each of them.
Records of the first half come first, then records of the second half.
A tag with a small distance in one half but a large one in the other
is probably a chimera, i.e., its halves come from different molecules.

Input format and filters are the same as the "analyze" command.

Output (TSV format):
  1.  file,          the file name without extensions, only for multiple input files
  2.  tag,           the query tag
  3.  family_size,   the family size of the query
  4.  primary_half,  the half used to search the nearest tags, a or b
  5.  match,         the nearest tag
  6.  hd_a,          Hamming distance of the first halves
  7.  hd_b,          Hamming distance of the second halves
  8.  hd_sum,        hd_a + hd_b
  9.  diff,          |hd_a - hd_b|
  10. rel_diff,      diff / hd_sum, with one decimal
  11. zero_half,     whether one of the halves is identical

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}
		timeStart := time.Now()
		defer func() {
			if opt.Verbose || opt.Log2File {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		aopt := getAnalysisOptions(cmd, opt)
		outFile := getFlagString(cmd, "out-file")
		onlyZeroHalf := getFlagBool(cmd, "only-zero-half")

		files := getInputFiles(cmd, args, opt)
		withName := len(files) > 1

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		verbose := opt.Verbose || opt.Log2File
		for i, file := range files {
			if verbose {
				log.Infof("[%d/%d] processing %s ...", i+1, len(files), file)
			}
			ds, err := readDataset(file, aopt, verbose)
			checkError(err)

			a, err := newAnalysis(ds, aopt)
			checkError(errors.Wrap(err, file))
			checkError(errors.Wrap(a.runChimeras(dispatchOptions(aopt, nil)), file))

			if onlyZeroHalf {
				a.Chimeras = zeroHalfRecords(a.Chimeras)
			}

			if verbose {
				log.Infof("  %s records for %s queries",
					humanize.Comma(int64(len(a.Chimeras))), humanize.Comma(int64(len(a.Sample))))
			}

			checkError(writeChimeras(outfh, a, i == 0, withName))
		}

		if verbose {
			log.Infof("results saved to: %s", outFile)
		}
	},
}

func init() {
	RootCmd.AddCommand(chimeraCmd)

	addAnalysisFlags(chimeraCmd)

	chimeraCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))

	chimeraCmd.Flags().BoolP("only-zero-half", "Z", false,
		formatFlagUsage(`Only output records with one identical half.`))

	chimeraCmd.SetUsageTemplate(usageTemplate("[-s <sample size>] {[-I <tags dir>] | <tag files> | -X <file list>} [-o <out file>]"))
}
