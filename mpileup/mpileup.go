// Package mpileup parses the text output of samtools mpileup.
package mpileup

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one genomic position of pileup output. Records are ephemeral:
// they are built per input line and consumed immediately.
type Record struct {
	Chrom   string
	Pos     int  // 1-based
	RefBase byte // upper-cased
	Calls   string
	Quals   string
}

// ParseLine parses one tab-delimited mpileup line:
// chrom, pos, ref base, depth, call string, quality string.
func ParseLine(line string) (Record, error) {
	var r Record
	col := strings.Split(line, "\t")
	if len(col) < 6 {
		return r, fmt.Errorf("mpileup line has %d fields, expected at least 6: %s", len(col), line)
	}
	pos, err := strconv.Atoi(col[1])
	if err != nil {
		return r, fmt.Errorf("mpileup line has non-numeric position: %s", line)
	}
	ref := strings.ToUpper(col[2])
	if ref == "" {
		return r, fmt.Errorf("mpileup line has empty reference base: %s", line)
	}
	r.Chrom = col[0]
	r.Pos = pos
	r.RefBase = ref[0]
	r.Calls = col[4]
	r.Quals = col[5]
	return r, nil
}

// StripIndels removes indel annotations from a pileup call string. An indel
// annotation is a '+' or '-' followed by a decimal length n and then n
// inserted/deleted bases; the whole token is removed. A sign not followed by
// a digit is an ordinary call character and is kept. All other characters
// pass through unchanged, in order.
func StripIndels(calls string) string {
	if !strings.ContainsAny(calls, "+-") {
		return calls
	}
	var out strings.Builder
	out.Grow(len(calls))
	i := 0
	for i < len(calls) {
		c := calls[i]
		if c != '+' && c != '-' {
			out.WriteByte(c)
			i++
			continue
		}
		j := i + 1
		for j < len(calls) && calls[j] >= '0' && calls[j] <= '9' {
			j++
		}
		if j == i+1 {
			// sign without a length, keep as a literal call
			out.WriteByte(c)
			i++
			continue
		}
		n, err := strconv.Atoi(calls[i+1 : j])
		if err != nil {
			out.WriteByte(c)
			i++
			continue
		}
		i = j + n
		if i > len(calls) {
			i = len(calls) // annotation truncated by end of string
		}
	}
	return out.String()
}
