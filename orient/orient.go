// Package orient rewrites alignment strand flags using the aligner's
// conversion-type tag, so that C-to-T conversion reads always present as
// forward alignments and G-to-A reads as reverse, whichever tool produced
// the bam. Downstream strand-based counting then needs no tool-specific
// logic.
//
// Two tag conventions are recognized: YZ ('+'/'-') written by hisat-3n and
// XG ("CT"/"GA") written by bismark. The convention is fixed from the first
// record and applied to the rest of the stream.
package orient

import (
	"errors"
	"fmt"
	"os"

	"github.com/vertgenlab/gonomics/fileio"
	"github.com/vertgenlab/gonomics/sam"
)

// ErrNoConversionTag is returned when the first record carries neither a YZ
// nor an XG tag. Only hisat-3n and bismark alignments can be normalized.
var ErrNoConversionTag = errors.New("bam records have no conversion type tag (XG by bismark or YZ by hisat-3n)")

// sam flag bits
const (
	flagPaired      uint16 = 1
	flagReverse     uint16 = 16
	flagMateReverse uint16 = 32
)

type convention int

const (
	undetected convention = iota
	hisat3n               // YZ:A:+ or YZ:A:-
	bismark               // XG:Z:CT or XG:Z:GA
)

// Normalize streams input to output rewriting every record's orientation
// flags (and its mate's, when paired) from its conversion-type tag. All
// other record content passes through untouched.
func Normalize(input, output string) error {
	reads, header := sam.GoReadToChan(input)
	out := fileio.EasyCreate(output)
	bw := sam.NewBamWriter(out, header)

	conv := undetected
	var failure error
	for r := range reads {
		if failure != nil {
			continue // drain the channel so the reader goroutine exits
		}
		ct, err := isCtConversion(r, &conv)
		if err != nil {
			failure = err
			continue
		}
		if ct {
			r.Flag &^= flagReverse
			if r.Flag&flagPaired != 0 {
				r.Flag &^= flagMateReverse
			}
		} else {
			r.Flag |= flagReverse
			if r.Flag&flagPaired != 0 {
				r.Flag |= flagMateReverse
			}
		}
		sam.WriteToBamFileHandle(bw, r, 0)
	}

	err := bw.Close()
	if failure == nil && err != nil {
		failure = err
	}
	err = out.Close()
	if failure == nil && err != nil {
		failure = err
	}
	if failure != nil && output != "stdout" {
		// a fatal error must not leave a truncated bam behind
		os.Remove(output)
	}
	return failure
}

// isCtConversion reports whether r is a C-to-T conversion read. The first
// record settles which tag convention is in use.
func isCtConversion(r sam.Sam, conv *convention) (bool, error) {
	if *conv == undetected {
		if _, found, err := sam.QueryTag(r, "YZ"); err == nil && found {
			*conv = hisat3n
		} else if _, found, err = sam.QueryTag(r, "XG"); err == nil && found {
			*conv = bismark
		} else {
			return false, ErrNoConversionTag
		}
	}

	tag := "YZ"
	want := "+"
	if *conv == bismark {
		tag = "XG"
		want = "CT"
	}
	value, found, err := sam.QueryTag(r, tag)
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("read %s is missing the %s conversion tag", r.QName, tag)
	}
	return tagString(value) == want, nil
}

// tagString renders a queried tag value, which may decode as a string or a
// single character depending on the tag type code.
func tagString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case byte:
		return string(v)
	case rune:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
