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

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Compute the nearest Hamming distance of tags",
	Long: `Compute the nearest Hamming distance of tags

For each sampled tag, the minimum nonzero Hamming distance to all
unique tags of the same file is computed.

Input format and filters are the same as the "analyze" command.

Output (TSV format):
  1. file,         the file name without extensions, only for multiple input files
  2. tag,          the tag sequence
  3. label,        the strand label
  4. family_size,  the family size
  5. hd,           the nearest Hamming distance

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
			checkError(errors.Wrap(a.runNearest(dispatchOptions(aopt, nil)), file))

			if verbose {
				log.Infof("  %s queries compared with %s unique tags",
					humanize.Comma(int64(len(a.Sample))), humanize.Comma(int64(a.Pool.Len())))
			}

			checkError(writeNearest(outfh, a, i == 0, withName))
		}

		if verbose {
			log.Infof("results saved to: %s", outFile)
		}
	},
}

func init() {
	RootCmd.AddCommand(nearestCmd)

	addAnalysisFlags(nearestCmd)

	nearestCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))

	nearestCmd.SetUsageTemplate(usageTemplate("[-s <sample size>] {[-I <tags dir>] | <tag files> | -X <file list>} [-o <out file>]"))
}
