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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/taghd/taghd/tags"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Hamming distance analysis of tags, with chimeric tag detection",
	Long: `Hamming distance analysis of tags, with chimeric tag detection

Input:
  1. Tab-delimited files with three columns: family size, tag sequence,
     and strand label (ab or ba). Lines starting with "#" are ignored.
     Plain or compressed files can be given via positional arguments
     or the flag -X/--infile-list with the list of input files,
  2. Or a directory containing tag files via the flag -I/--in-dir,
     with multiple-level sub-directories allowed. A regular expression
     for matching tag files is available via the flag -r/--file-regexp.
  All tags in a file should have the same length.

Steps:
  1. Tags are filtered by family sizes (--min-fs, --max-fs). With --only-dcs,
     only tags appearing at least twice (duplex consensus sequences) are kept,
     the first occurrence is the ab strand, and the second one is the ba strand.
  2. Optionally, each half of tags is shortened to --subset-tag bases.
  3. A sample of tags (-s/--sample-size, 0 for all tags) is compared with
     all unique tags:
       a) the minimum nonzero Hamming distance of the whole tag,
       b) for each half, the tags with the minimum distance of this half
          (all ties kept), and the distance of the other half.
          Tags with a small distance in one half but a large one in the other
          are potential chimeras.

Output (one directory per input file in -O/--out-dir):
  nearest.tsv    whole-tag nearest distances of the sample
  chimeras.tsv   records of the half-wise search
  summary.csv    tables of counts, with the separator of --sep
  hd.pdf         histograms, unless --no-plot is given
  info.toml      parameters and basic statistics

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

		// ---------------------------------------------------------------
		// basic flags

		aopt := getAnalysisOptions(cmd, opt)

		outDir := getFlagString(cmd, "out-dir")
		force := getFlagBool(cmd, "force")
		sep := getFlagString(cmd, "sep")
		noPlot := getFlagBool(cmd, "no-plot")

		if outDir == "" {
			checkError(fmt.Errorf("flag -O/--out-dir is needed"))
		}
		if len(sep) != 1 {
			checkError(fmt.Errorf("the value of --sep should be a single character: %s", sep))
		}
		outDir = filepath.Clean(outDir)

		if opt.Verbose || opt.Log2File {
			log.Infof("TagHD v%s", VERSION)
			log.Info("  https://github.com/shenwei356/taghd")
			log.Info()

			log.Info("checking input files ...")
		}

		files := getInputFiles(cmd, args, opt)

		// output directories are named after input files
		names := make(map[string]string, len(files))
		for _, file := range files {
			name := datasetName(file)
			if other, ok := names[name]; ok {
				checkError(fmt.Errorf("input files with the same name: %s, %s", other, file))
			}
			names[name] = file
		}

		makeOutDir(outDir, force, "output directory", opt.Verbose || opt.Log2File)

		if opt.Verbose || opt.Log2File {
			log.Info()
			log.Infof("-------------------- [main parameters] --------------------")
			log.Infof("family size range: [%d, %s]", aopt.MinFamilySize, maxFSString(aopt.MaxFamilySize))
			log.Infof("only DCS: %v", aopt.OnlyDCS)
			log.Infof("length of tag subset: %d", aopt.SubsetTag)
			log.Infof("sample size: %d", aopt.SampleSize)
			log.Infof("rand seed: %d", aopt.Seed)
			log.Infof("threads: %d", aopt.NumCPUs)
			log.Infof("output directory: %s", outDir)
			log.Infof("-------------------- [main parameters] --------------------")
			log.Info()
		}

		for i, file := range files {
			if opt.Verbose || opt.Log2File {
				log.Infof("[%d/%d] analysing %s ...", i+1, len(files), file)
			}
			dir := filepath.Join(outDir, datasetName(file))
			checkError(os.MkdirAll(dir, 0777))
			checkError(analyzeFile(file, dir, aopt, opt, sep, noPlot))
		}

		if opt.Verbose || opt.Log2File {
			log.Info()
			log.Infof("results saved to: %s", outDir)
		}
	},
}

// analyzeFile runs the whole pipeline for a file and writes results to outDir.
func analyzeFile(file, outDir string, aopt *AnalysisOptions, opt *Options, sep string, noPlot bool) error {
	verbose := opt.Verbose || opt.Log2File

	ds, err := readDataset(file, aopt, verbose)
	if err != nil {
		return err
	}

	// progress bar
	var pbs *mpb.Progress
	var bar *mpb.Bar
	var progress func(int)
	if opt.Verbose {
		n := aopt.SampleSize
		if n == 0 {
			n = len(ds.Records)
		}
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar = pbs.AddBar(int64(n*3),
			mpb.PrependDecorators(
				decor.Name("processed queries: ", decor.WC{W: len("processed queries: "), C: decor.DindentRight}),
				decor.Name("", decor.WCSyncSpaceR),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
				decor.AverageETA(decor.ET_STYLE_GO),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)
		progress = func(n int) { bar.IncrBy(n) }
	}

	timeStart := time.Now()
	a, err := analyze(ds, aopt, progress)
	if pbs != nil {
		if err != nil {
			bar.Abort(false)
		}
		pbs.Wait()
	}
	if err != nil {
		return errors.Wrap(err, file)
	}

	if verbose {
		log.Infof("  %s queries compared with %s unique tags in %s",
			humanize.Comma(int64(len(a.Sample))), humanize.Comma(int64(a.Pool.Len())), time.Since(timeStart))
		log.Infof("  %s records of the half-wise search", humanize.Comma(int64(len(a.Chimeras))))
	}

	t := newReportTables(a)
	if verbose {
		log.Infof("  %s records with an identical half", humanize.Comma(int64(t.ZeroHalf)))
	}

	// outputs
	err = writeFile(filepath.Join(outDir, "nearest.tsv"), func(w *os.File) error {
		return writeNearest(w, a, true, false)
	})
	if err != nil {
		return err
	}
	err = writeFile(filepath.Join(outDir, "chimeras.tsv"), func(w *os.File) error {
		return writeChimeras(w, a, true, false)
	})
	if err != nil {
		return err
	}
	err = writeFile(filepath.Join(outDir, "summary.csv"), func(w *os.File) error {
		return writeSummary(w, a, t, sep)
	})
	if err != nil {
		return err
	}

	if !noPlot {
		pdf := filepath.Join(outDir, "hd.pdf")
		pages, err := writePlots(pdf, a, t)
		if err != nil {
			return err
		}
		if verbose {
			log.Infof("  %d plots saved to %s", pages, pdf)
		}
	}

	return newRunInfo(file, a, t, aopt).save(filepath.Join(outDir, "info.toml"))
}

// readDataset reads and filters tags of a file.
func readDataset(file string, aopt *AnalysisOptions, verbose bool) (*Dataset, error) {
	recs, err := tags.ReadFile(file, &tags.DefaultReadOptions)
	if err != nil {
		return nil, err
	}
	ds, err := prepareDataset(datasetName(file), recs, aopt)
	if err != nil {
		return nil, err
	}

	if verbose {
		log.Infof("  %s tags read, %s left after filtering by family sizes",
			humanize.Comma(int64(ds.NumRaw)), humanize.Comma(int64(ds.NumByFS)))
		if aopt.OnlyDCS {
			log.Infof("  %s DCSs found", humanize.Comma(int64(ds.NumDuplex)))
		}
		log.Infof("  tag length: %d", ds.TagLength)
	}
	return ds, nil
}

func writeFile(file string, fn func(w *os.File) error) error {
	w, err := os.Create(file)
	if err != nil {
		return errors.Wrapf(err, "fail to write %s", file)
	}
	if err = fn(w); err != nil {
		w.Close()
		return errors.Wrapf(err, "fail to write %s", file)
	}
	return w.Close()
}

func maxFSString(max int) string {
	if max == 0 {
		return "∞"
	}
	return fmt.Sprintf("%d", max)
}

// addAnalysisFlags adds flags of input files, tag filtering and sampling.
func addAnalysisFlags(cmd *cobra.Command) {
	// -----------------------------  input  -----------------------------

	cmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage(`File of input file list (one file per line). If given, they are appended to files from CLI arguments.`))

	cmd.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing tag files. Directory symlinks are followed.`))

	cmd.Flags().StringP("file-regexp", "r", `\.(tabular|tsv|txt)(\.gz|\.xz|\.zst|\.bz2)?$`,
		formatFlagUsage(`Regular expression for matching tag files in -I/--in-dir, case ignored.`))

	// -----------------------------  filtering  -----------------------------

	cmd.Flags().IntP("min-fs", "", 1,
		formatFlagUsage(`Only tags with family sizes greater than or equal to this value are kept.`))

	cmd.Flags().IntP("max-fs", "", 0,
		formatFlagUsage(`Only tags with family sizes smaller than or equal to this value are kept (0 for no limit).`))

	cmd.Flags().BoolP("only-dcs", "", false,
		formatFlagUsage(`Only tags of duplex consensus sequences (DCSs), i.e., tags appearing at least twice, are kept.`))

	cmd.Flags().IntP("subset-tag", "", 0,
		formatFlagUsage(`Shorten each half of tags to this length, keeping the central part (0 for the whole tag).`))

	// -----------------------------  sampling  -----------------------------

	cmd.Flags().IntP("sample-size", "s", 1000,
		formatFlagUsage(`Number of tags randomly sampled as queries (0 for all tags).`))

	cmd.Flags().Int64P("seed", "", 1,
		formatFlagUsage(`Rand seed for sampling.`))

	// -----------------------------  others  -----------------------------

	cmd.Flags().BoolP("strict-zero-sum", "", false,
		formatFlagUsage(`Stop when both halves of a tag are identical to those of the nearest tag, instead of reporting a relative difference of 0.`))
}

func getAnalysisOptions(cmd *cobra.Command, opt *Options) *AnalysisOptions {
	aopt := &AnalysisOptions{
		NumCPUs: opt.NumCPUs,

		MinFamilySize: getFlagNonNegativeInt(cmd, "min-fs"),
		MaxFamilySize: getFlagNonNegativeInt(cmd, "max-fs"),
		OnlyDCS:       getFlagBool(cmd, "only-dcs"),
		SubsetTag:     getFlagNonNegativeInt(cmd, "subset-tag"),

		SampleSize: getFlagNonNegativeInt(cmd, "sample-size"),
		Seed:       getFlagInt64(cmd, "seed"),

		StrictZeroSum: getFlagBool(cmd, "strict-zero-sum"),
	}
	checkError(CheckAnalysisOptions(aopt))
	return aopt
}

func init() {
	RootCmd.AddCommand(analyzeCmd)

	addAnalysisFlags(analyzeCmd)

	// -----------------------------  output  -----------------------------

	analyzeCmd.Flags().StringP("out-dir", "O", "",
		formatFlagUsage(`Output directory.`))

	analyzeCmd.Flags().BoolP("force", "", false,
		formatFlagUsage(`Overwrite existed output directory.`))

	analyzeCmd.Flags().StringP("sep", "", ",",
		formatFlagUsage(`Separator of summary.csv, a single character.`))

	analyzeCmd.Flags().BoolP("no-plot", "", false,
		formatFlagUsage(`Do not plot histograms.`))

	analyzeCmd.SetUsageTemplate(usageTemplate("[-s <sample size>] {[-I <tags dir>] | <tag files> | -X <file list>} -O <out dir>"))
}
