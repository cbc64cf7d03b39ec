package allc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// Stats accumulates methylated and covered call totals per sequence context
// across a whole run, plus the mean read depth over the reference
// (total pileup lines / total reference length).
type Stats struct {
	MC             map[string]int
	Cov            map[string]int
	GenomeCoverage float64
}

// NewStats returns an empty Stats.
func NewStats() Stats {
	return Stats{MC: make(map[string]int), Cov: make(map[string]int)}
}

// Add records one emitted row's contribution for its context.
func (s Stats) Add(context string, mc, cov int) {
	s.MC[context] += mc
	s.Cov[context] += cov
}

// Merge adds o's totals into s. Genome coverage figures from disjoint
// partitions of the same reference share a denominator, so they sum.
func (s *Stats) Merge(o Stats) {
	for context, mc := range o.MC {
		s.MC[context] += mc
	}
	for context, cov := range o.Cov {
		s.Cov[context] += cov
	}
	s.GenomeCoverage += o.GenomeCoverage
}

// Rate returns the methylation fraction for one context.
func (s Stats) Rate(context string) float64 {
	cov := s.Cov[context]
	if cov == 0 {
		return 0
	}
	return float64(s.MC[context]) / float64(cov)
}

// Contexts returns the observed contexts in sorted order.
func (s Stats) Contexts() []string {
	contexts := maps.Keys(s.Cov)
	slices.Sort(contexts)
	return contexts
}

// OverallLevel returns the coverage-weighted mean methylation level across
// all contexts.
func (s Stats) OverallLevel() float64 {
	contexts := s.Contexts()
	if len(contexts) == 0 {
		return 0
	}
	rates := make([]float64, len(contexts))
	weights := make([]float64, len(contexts))
	for i, context := range contexts {
		rates[i] = s.Rate(context)
		weights[i] = float64(s.Cov[context])
	}
	return stat.Mean(rates, weights)
}

// WriteTSV writes the per-context count table next to an ALLC file.
// Columns: context, mc, cov, mc_rate, genome_cov.
func (s Stats) WriteTSV(filename string) {
	out := fileio.EasyCreate(filename)
	fmt.Fprintf(out, "context\tmc\tcov\tmc_rate\tgenome_cov\n")
	for _, context := range s.Contexts() {
		fmt.Fprintf(out, "%s\t%d\t%d\t%g\t%g\n", context, s.MC[context], s.Cov[context], s.Rate(context), s.GenomeCoverage)
	}
	err := out.Close()
	exception.PanicOnErr(err)
}

// ReadStatsTSV reads a count table written by WriteTSV.
func ReadStatsTSV(filename string) (Stats, error) {
	s := NewStats()
	file := fileio.EasyOpen(filename)
	var line string
	var col []string
	var done, header bool
	var err error
	header = true
	for line, done = fileio.EasyNextRealLine(file); !done; line, done = fileio.EasyNextRealLine(file) {
		if header {
			header = false
			continue
		}
		col = strings.Split(line, "\t")
		if len(col) != 5 {
			return s, fmt.Errorf("malformed count table %s, error on line: %s", filename, line)
		}
		mc, err := strconv.Atoi(col[1])
		if err != nil {
			return s, fmt.Errorf("malformed count table %s, error on line: %s", filename, line)
		}
		cov, err := strconv.Atoi(col[2])
		if err != nil {
			return s, fmt.Errorf("malformed count table %s, error on line: %s", filename, line)
		}
		genomeCov, err := strconv.ParseFloat(col[4], 64)
		if err != nil {
			return s, fmt.Errorf("malformed count table %s, error on line: %s", filename, line)
		}
		s.MC[col[0]] = mc
		s.Cov[col[0]] = cov
		s.GenomeCoverage = genomeCov
	}
	err = file.Close()
	return s, err
}
