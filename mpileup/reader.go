package mpileup

import (
	"bufio"
	"io"
)

// maxLineBytes bounds a single pileup line. Deep positions list one call
// character per overlapping read, so lines grow with depth.
const maxLineBytes = 1 << 26

// Reader streams Records from line-oriented mpileup output, typically a pipe
// from samtools. Lines that fail to parse are skipped, the stream continues.
type Reader struct {
	s     *bufio.Scanner
	lines int
}

// NewReader wraps r in a Reader.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 1<<16), maxLineBytes)
	return &Reader{s: s}
}

// Next returns the next well-formed record. done is true once the input is
// exhausted. A non-nil error reports a failure of the underlying stream, not
// of any single line.
func (r *Reader) Next() (rec Record, done bool, err error) {
	for r.s.Scan() {
		r.lines++
		line := r.s.Text()
		if line == "" {
			continue
		}
		rec, err = ParseLine(line)
		if err != nil {
			err = nil // malformed lines do not stop the stream
			continue
		}
		return rec, false, nil
	}
	return Record{}, true, r.s.Err()
}

// Lines returns the number of input lines consumed so far, counting lines
// that failed to parse.
func (r *Reader) Lines() int {
	return r.lines
}
