package main

import (
	"flag"
	"fmt"

	"github.com/theAeon/ALLCools/allc"
	"github.com/vertgenlab/gonomics/exception"
)

func mergeStatsUsage(fs *flag.FlagSet) {
	fmt.Print(
		"merge-stats - Sum per-context count tables from partitioned runs\n\n" +
			"Methylated and covered totals are summed per context and the\n" +
			"methylation rate recomputed from the sums.\n\n" +
			"Usage:\n" +
			"  allctools merge-stats -o merged.tsv part1.tsv part2.tsv ...\n\n" +
			"Options:\n")
	fs.PrintDefaults()
}

func runMergeStats(args []string) {
	var err error
	fs := flag.NewFlagSet("merge-stats", flag.ExitOnError)

	output := fs.String("o", "stdout", "Output count table.")

	err = fs.Parse(args)
	exception.PanicOnErr(err)
	fs.Usage = func() { mergeStatsUsage(fs) }

	if fs.NArg() == 0 {
		fs.Usage()
		errExit("\nERROR: must list at least one count table to merge")
	}

	merged := allc.NewStats()
	for _, filename := range fs.Args() {
		part, err := allc.ReadStatsTSV(filename)
		if err != nil {
			errExit(fmt.Sprintf("ERROR: %s", err))
		}
		merged.Merge(part)
	}
	merged.WriteTSV(*output)
}
