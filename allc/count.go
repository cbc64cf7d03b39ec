package allc

import (
	"strings"

	"github.com/theAeon/ALLCools/mpileup"
	"github.com/vertgenlab/gonomics/dna"
)

// Row is one ALLC output record: a single covered cytosine.
type Row struct {
	Chrom   string
	Pos     int // 1-based
	Strand  byte
	Context string
	MC      int // methylated (unconverted) calls
	Cov     int // methylated + converted calls
}

// countSite classifies one pileup record against the loaded chromosome
// sequence. Only C and G reference bases participate. A read matching the
// reference is an unconverted (methylated) cytosine; a C->T mismatch on the
// site's strand is a converted one. Sites with no informative calls or with
// a context window truncated by the chromosome edge report ok=false.
//
// Calls must already have indel annotations stripped.
func countSite(rec mpileup.Record, seq string, upstream, downstream int) (row Row, ok bool) {
	contextLen := upstream + 1 + downstream
	pos := rec.Pos - 1 // 0-based

	switch rec.RefBase {
	case 'C':
		// forward strand site, reads on the forward strand pile up as '.' and 'T'
		start, end := pos-upstream, pos+downstream+1
		if start < 0 || end > len(seq) {
			return row, false
		}
		mc := strings.Count(rec.Calls, ".")
		cov := mc + strings.Count(rec.Calls, "T")
		context := seq[start:end]
		if cov == 0 || len(context) != contextLen {
			return row, false
		}
		return Row{Chrom: rec.Chrom, Pos: rec.Pos, Strand: '+', Context: context, MC: mc, Cov: cov}, true

	case 'G':
		// reverse strand site, reads on the reverse strand pile up as ',' and 'a'.
		// The raw window mirrors the forward case; reverse complementing it
		// yields a context reading 5'->3' on the cytosine's own strand.
		start, end := pos-downstream, pos+upstream+1
		if start < 0 || end > len(seq) {
			return row, false
		}
		window := seq[start:end]
		if !isACGTN(window) {
			// ambiguity codes cannot be complemented, treat the site as
			// having insufficient context
			return row, false
		}
		mc := strings.Count(rec.Calls, ",")
		cov := mc + strings.Count(rec.Calls, "a")
		bases := dna.StringToBases(window)
		dna.ReverseComplement(bases)
		context := dna.BasesToString(bases)
		if cov == 0 || len(context) != contextLen {
			return row, false
		}
		return Row{Chrom: rec.Chrom, Pos: rec.Pos, Strand: '-', Context: context, MC: mc, Cov: cov}, true
	}
	return row, false
}

// isACGTN reports whether every base in the window is one of ACGTN.
// References may carry extended IUPAC ambiguity codes (R, Y, W, ...).
func isACGTN(window string) bool {
	for i := 0; i < len(window); i++ {
		switch window[i] {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			return false
		}
	}
	return true
}
