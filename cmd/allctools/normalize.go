package main

import (
	"flag"
	"fmt"

	"github.com/theAeon/ALLCools/orient"
	"github.com/vertgenlab/gonomics/exception"
)

func normalizeUsage(fs *flag.FlagSet) {
	fmt.Print(
		"normalize - Rewrite read orientation from conversion type tags\n\n" +
			"C-to-T conversion reads (YZ:+ from hisat-3n, XG:CT from bismark) are\n" +
			"forced to the forward strand and G-to-A reads to the reverse strand,\n" +
			"mates included. Everything else in each record is untouched.\n\n" +
			"Usage:\n" +
			"  allctools normalize [options] -i input.bam -o output.bam\n\n" +
			"Options:\n")
	fs.PrintDefaults()
}

func runNormalize(args []string) {
	var err error
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)

	input := fs.String("i", "", "Input BAM file with YZ or XG tags.")
	output := fs.String("o", "stdout", "Output BAM file.")

	err = fs.Parse(args)
	exception.PanicOnErr(err)
	fs.Usage = func() { normalizeUsage(fs) }

	if *input == "" {
		fs.Usage()
		errExit("\nERROR: must have an input for -i")
	}

	err = orient.Normalize(*input, *output)
	if err != nil {
		errExit("ERROR: " + err.Error())
	}
}
