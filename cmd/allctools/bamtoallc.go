package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/theAeon/ALLCools/allc"
	"github.com/theAeon/ALLCools/fai"
	"github.com/theAeon/ALLCools/orient"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
)

func bamToAllcUsage(fs *flag.FlagSet) {
	fmt.Print(
		"bam-to-allc - Generate an ALLC methylation table from one position sorted bam\n\n" +
			"Calls samtools mpileup on the input bam and converts its output to one\n" +
			"row per covered cytosine. The reference fasta must be faidx indexed.\n\n" +
			"Usage:\n" +
			"  allctools bam-to-allc [options] -b input.bam -f ref.fa -o out.allc.tsv.gz\n\n" +
			"Options:\n")
	fs.PrintDefaults()
}

func runBamToAllc(args []string) {
	var err error
	fs := flag.NewFlagSet("bam-to-allc", flag.ExitOnError)

	bamFile := fs.String("b", "", "Input position sorted BAM file.")
	fastaFile := fs.String("f", "", "Reference fasta used for mapping. Must have a .fai index.")
	outFile := fs.String("o", "", "Output ALLC file. Defaults to allc_<bam name>.tsv.gz next to the bam.")
	pileupFile := fs.String("pileup", "", "Pre-made samtools mpileup output to convert instead of running samtools. May be '-' for stdin.")
	upstream := fs.Int("upstream", 0, "Number of upstream bases in the context column. Use 1 for NOMe-seq.")
	downstream := fs.Int("downstream", 2, "Number of downstream bases in the context column.")
	minMapQ := fs.Int("mapq", 10, "Minimum mapping quality for a read to be counted (samtools mpileup -q).")
	minBaseQ := fs.Int("baseq", 20, "Minimum base quality for a call to be counted (samtools mpileup -Q).")
	level := fs.Int("level", 5, "Output gzip compression level.")
	batch := fs.Int("batch", 100000, "Number of output rows buffered between flushes.")
	tabix := fs.Bool("tabix", true, "Build a tabix positional index over the finished ALLC file.")
	statsFile := fs.String("stats", "", "Write the per-context count table to this file.")
	convertStrand := fs.Bool("convert-strand", false, "Normalize read orientation from conversion type tags before counting. Required for hisat-3n or paired bismark bams.")
	plot := fs.Bool("plot", false, "Print an ascii plot of methylation level by context.")
	cpu := fs.Int("cpu", 1, "Worker count for partitioned processing.")
	verbose := fs.Int("v", 0, "Verbose output by setting to >0.")

	err = fs.Parse(args)
	exception.PanicOnErr(err)
	fs.Usage = func() { bamToAllcUsage(fs) }

	if *fastaFile == "" || (*bamFile == "" && *pileupFile == "") {
		fs.Usage()
		errExit("\nERROR: must have inputs for -f and one of -b or -pileup")
	}
	if *cpu > 1 {
		// Position partitioned regions split read pairs at their edges, so
		// concatenated per-region ALLC rows are not correct. See allc.Chunks.
		errExit("ERROR: " + allc.ErrParallelRows.Error())
	}
	if strandFlagConflict(*convertStrand, *pileupFile) {
		errExit("ERROR: -convert-strand cannot be applied to a pre-made pileup. " +
			"Run `allctools normalize` on the bam before generating the pileup.")
	}

	if _, err = os.Stat(*fastaFile); err != nil {
		errExit(fmt.Sprintf("ERROR: reference fasta not found at %s", *fastaFile))
	}
	idx, err := fai.ReadIndex(*fastaFile + ".fai")
	if err != nil {
		errExit("ERROR: " + err.Error() + "\nUse samtools faidx to index the reference and run again.")
	}

	out := *outFile
	if out == "" && *bamFile == "" {
		fs.Usage()
		errExit("\nERROR: must have an input for -o when converting a pre-made pileup")
	}
	if out == "" {
		name := strings.SplitN(filepath.Base(*bamFile), ".", 2)[0]
		out = filepath.Join(filepath.Dir(*bamFile), "allc_"+name+".tsv.gz")
	} else if !strings.HasSuffix(out, ".gz") {
		out += ".gz"
	}

	bam := *bamFile
	if *convertStrand {
		tempBam := out + ".strandnorm.bam"
		err = orient.Normalize(bam, tempBam)
		if err != nil {
			errExit("ERROR: " + err.Error())
		}
		defer os.Remove(tempBam)
		defer os.Remove(tempBam + ".bai")
		bam = tempBam
	}

	var pileup io.Reader
	var mpileupCmd *exec.Cmd
	switch {
	case *pileupFile == "-":
		pileup = os.Stdin
	case *pileupFile != "":
		file := fileio.EasyOpen(*pileupFile)
		defer file.Close()
		pileup = file
	default:
		if _, err = os.Stat(bam + ".bai"); err != nil {
			indexBam(bam)
		}
		err = allc.CheckChroms(bam, idx)
		if err != nil {
			errExit("ERROR: " + err.Error() + "\nMake sure you use the same genome fasta for mapping and bam-to-allc.")
		}
		mpileupCmd = exec.Command("samtools", "mpileup",
			"-Q", strconv.Itoa(*minBaseQ), "-q", strconv.Itoa(*minMapQ),
			"-B", "-f", *fastaFile, bam)
		mpileupCmd.Stderr = os.Stderr
		pileup, err = mpileupCmd.StdoutPipe()
		exception.PanicOnErr(err)
		err = mpileupCmd.Start()
		if err != nil {
			errExit("ERROR: could not start samtools mpileup: " + err.Error())
		}
	}

	ref, err := fai.NewSeqReader(*fastaFile, idx)
	if err != nil {
		errExit("ERROR: " + err.Error())
	}
	defer ref.Close()

	stats, err := allc.Run(pileup, ref, out, allc.Options{
		Upstream:      *upstream,
		Downstream:    *downstream,
		BatchSize:     *batch,
		CompressLevel: *level,
		Tabix:         *tabix,
		StatsPath:     *statsFile,
		Verbose:       *verbose,
	})
	if err != nil {
		errExit("ERROR: " + err.Error())
	}
	if mpileupCmd != nil {
		err = mpileupCmd.Wait()
		if err != nil {
			errExit("ERROR: samtools mpileup failed: " + err.Error())
		}
	}

	if *verbose > 0 {
		log.Printf("wrote %s, overall mC level %.4f, genome coverage %.2fx",
			out, stats.OverallLevel(), stats.GenomeCoverage)
	}
	if *plot {
		plotStats(stats)
	}
}

// strandFlagConflict reports whether orientation normalization was requested
// for input this command never pileups itself. Normalization rewrites the
// bam before mpileup runs, so it can do nothing for a pre-made pileup.
func strandFlagConflict(convertStrand bool, pileupFile string) bool {
	return convertStrand && pileupFile != ""
}

// plotStats prints methylation level by context as an ascii graph.
func plotStats(stats allc.Stats) {
	contexts := stats.Contexts()
	if len(contexts) == 0 {
		return
	}
	rates := make([]float64, len(contexts))
	for i := range contexts {
		rates[i] = stats.Rate(contexts[i])
	}
	fmt.Println(asciigraph.Plot(rates, asciigraph.Height(10),
		asciigraph.Caption("mC level by context: "+strings.Join(contexts, " "))))
}

func indexBam(bam string) {
	out, err := exec.Command("samtools", "index", bam).CombinedOutput()
	if err != nil {
		errExit(fmt.Sprintf("ERROR: samtools index failed on %s: %v: %s", bam, err, strings.TrimSpace(string(out))))
	}
}
