package allc

import (
	"errors"
	"fmt"

	"github.com/theAeon/ALLCools/fai"
	"github.com/vertgenlab/gonomics/numbers"
)

// ErrParallelRows reports that partitioned row output is not supported.
// Splitting the genome by position splits piled-up reads that span a
// partition edge, so naive concatenation of per-region ALLC files can
// double-count or miss calls at the boundary. Per-context statistics merge
// safely (see Stats.Merge); row streams do not.
var ErrParallelRows = errors.New("partitioned ALLC row output is unsupported: read pairs spanning partition boundaries would be double counted")

// Region is a half-open genomic range rendered 1-based inclusive, the
// samtools region convention.
type Region struct {
	Chrom string
	Start int // 1-based
	End   int // inclusive
}

// String renders the region as chrom:start-end for samtools.
func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// Chunks partitions the reference into regions of at most binLength bases,
// in genome order, for coarse per-region parallelism. Each chromosome is
// split independently; chunks never span chromosomes.
func Chunks(idx fai.Index, binLength int) []Region {
	var regions []Region
	for _, chrom := range idx.Chroms() {
		size := idx.Size(chrom)
		for start := 1; start <= size; start += binLength {
			regions = append(regions, Region{
				Chrom: chrom,
				Start: start,
				End:   numbers.Min(start+binLength-1, size),
			})
		}
	}
	return regions
}
