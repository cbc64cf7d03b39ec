// Package allc converts sorted samtools mpileup output into an ALLC table:
// one tab-delimited row per covered cytosine with its strand, sequence
// context, methylated call count, and coverage.
package allc

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/theAeon/ALLCools/fai"
	"github.com/theAeon/ALLCools/mpileup"
	"github.com/vertgenlab/gonomics/sam"
)

// Options controls a single pileup-to-ALLC pass.
type Options struct {
	Upstream      int    // reference bases included before the cytosine
	Downstream    int    // reference bases included after the cytosine
	BatchSize     int    // rows buffered between flushes
	CompressLevel int    // gzip level for the bgzf sink
	Tabix         bool   // build a positional index over the finished file
	StatsPath     string // if set, write the per-context count table here
	Verbose       int
}

// Run streams sorted mpileup lines from pileup into an ALLC file at outPath
// and returns the per-context statistics. The input must be sorted ascending
// by (chrom, pos); output rows preserve that order. The reference chromosome
// sequence is loaded once per chromosome transition and held as the only
// cached sequence.
func Run(pileup io.Reader, ref *fai.SeqReader, outPath string, opt Options) (Stats, error) {
	w, err := NewWriter(outPath, opt.BatchSize, opt.CompressLevel)
	if err != nil {
		return NewStats(), err
	}

	pr := mpileup.NewReader(pileup)
	var curChrom, seq string
	for {
		rec, done, err := pr.Next()
		if err != nil {
			w.Close()
			return w.Stats(), err
		}
		if done {
			break
		}

		if rec.Chrom != curChrom {
			curChrom = rec.Chrom
			seq, err = ref.Chromosome(curChrom)
			if err != nil {
				w.Close()
				return w.Stats(), err
			}
			if opt.Verbose > 0 {
				log.Printf("processing %s", curChrom)
			}
		}

		if rec.RefBase != 'C' && rec.RefBase != 'G' {
			continue
		}

		rec.Calls = mpileup.StripIndels(rec.Calls)
		row, ok := countSite(rec, seq, opt.Upstream, opt.Downstream)
		if !ok {
			continue
		}
		err = w.Write(row)
		if err != nil {
			w.Close()
			return w.Stats(), err
		}
	}

	err = w.Close()
	if err != nil {
		return w.Stats(), err
	}

	stats := w.Stats()
	stats.GenomeCoverage = float64(pr.Lines()) / float64(ref.Index().TotalLength())

	if opt.Tabix {
		err = Tabix(outPath)
		if err != nil {
			return stats, err
		}
	}
	if opt.StatsPath != "" {
		stats.WriteTSV(opt.StatsPath)
	}
	return stats, nil
}

// CheckChroms verifies every chromosome named in the bam header is present
// in the fasta index. Mapping against one genome and calling against another
// fails in confusing ways downstream, so mismatches are fatal up front.
func CheckChroms(bamFile string, idx fai.Index) error {
	br, header := sam.OpenBam(bamFile)
	defer br.Close()
	var unknown []string
	for i := range header.Chroms {
		if !idx.Has(header.Chroms[i].Name) {
			unknown = append(unknown, header.Chroms[i].Name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("bam contains chromosomes absent from the reference index: %s", strings.Join(unknown, " "))
	}
	return nil
}
