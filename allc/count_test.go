package allc

import (
	"strings"
	"testing"

	"github.com/theAeon/ALLCools/mpileup"
	"github.com/vertgenlab/gonomics/dna"
)

func TestCountSiteForward(t *testing.T) {
	// reference positions 100-102 are CGA
	seq := strings.Repeat("A", 99) + "CGA"
	rec := mpileup.Record{Chrom: "chr1", Pos: 100, RefBase: 'C', Calls: "...T."}
	row, ok := countSite(rec, seq, 0, 2)
	if !ok {
		t.Fatal("expected a row for a covered forward site")
	}
	if row.Chrom != "chr1" || row.Pos != 100 || row.Strand != '+' ||
		row.Context != "CGA" || row.MC != 4 || row.Cov != 5 {
		t.Error("problem with forward strand counting", row)
	}
}

func TestCountSiteReverse(t *testing.T) {
	// reference positions 198-200 are GCG; the emitted context is the
	// reverse complement of that window
	seq := strings.Repeat("A", 197) + "GCG"
	rec := mpileup.Record{Chrom: "chr1", Pos: 200, RefBase: 'G', Calls: ",,a"}
	row, ok := countSite(rec, seq, 0, 2)
	if !ok {
		t.Fatal("expected a row for a covered reverse site")
	}
	if row.Strand != '-' || row.Context != "CGC" || row.MC != 2 || row.Cov != 3 {
		t.Error("problem with reverse strand counting", row)
	}
}

func TestCountSiteReverseComplementInvolution(t *testing.T) {
	seq := "AATCGGA"
	rec := mpileup.Record{Chrom: "chr1", Pos: 5, RefBase: 'G', Calls: ","}
	row, ok := countSite(rec, seq, 1, 2)
	if !ok {
		t.Fatal("expected a row")
	}
	// reverse complementing the emitted context must reproduce the raw
	// forward window at the mirrored offsets
	bases := dna.StringToBases(row.Context)
	dna.ReverseComplement(bases)
	if dna.BasesToString(bases) != seq[4-2:4+1+1] {
		t.Error("context is not an involution under reverse complement", row.Context)
	}
}

func TestCountSiteAmbiguityCodes(t *testing.T) {
	// a reverse site whose window touches an IUPAC ambiguity code cannot
	// be complemented and is skipped like any other insufficient context
	rec := mpileup.Record{Chrom: "chr1", Pos: 3, RefBase: 'G', Calls: ","}
	if _, ok := countSite(rec, "ARGAAAA", 0, 2); ok {
		t.Error("reverse sites with ambiguity codes in the window must be skipped")
	}

	// forward contexts are emitted verbatim, ambiguity codes included
	rec = mpileup.Record{Chrom: "chr1", Pos: 2, RefBase: 'C', Calls: "."}
	row, ok := countSite(rec, "ACRTA", 0, 2)
	if !ok || row.Context != "CRT" {
		t.Error("forward contexts should pass through unvalidated", row, ok)
	}
}

func TestCountSiteSkips(t *testing.T) {
	seq := "CCGGCCGG"

	// non-cytosine reference base
	if _, ok := countSite(mpileup.Record{Pos: 1, RefBase: 'A', Calls: "."}, seq, 0, 2); ok {
		t.Error("non-C/G reference bases must be skipped")
	}
	// zero coverage: no informative call symbols for the site's strand
	if _, ok := countSite(mpileup.Record{Pos: 1, RefBase: 'C', Calls: ",,a"}, seq, 0, 2); ok {
		t.Error("zero coverage sites must be skipped")
	}
	// truncated window at the chromosome start
	if _, ok := countSite(mpileup.Record{Pos: 1, RefBase: 'C', Calls: "."}, seq, 1, 2); ok {
		t.Error("sites too close to the chromosome start must be skipped")
	}
	// truncated window at the chromosome end. A reverse site's upstream
	// bases extend toward the end of the chromosome.
	if _, ok := countSite(mpileup.Record{Pos: 8, RefBase: 'G', Calls: ","}, seq, 1, 0); ok {
		t.Error("sites too close to the chromosome end must be skipped")
	}
	// same coordinates with a window that fits are emitted
	if _, ok := countSite(mpileup.Record{Pos: 8, RefBase: 'G', Calls: ","}, seq, 0, 2); !ok {
		t.Error("expected a row when the full window fits")
	}
}
