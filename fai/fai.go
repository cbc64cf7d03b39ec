// Package fai provides random access to an indexed reference FASTA file.
package fai

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vertgenlab/gonomics/fileio"
)

// ErrMissingIndex is returned when the fai file does not exist.
// The index must be generated out of band with `samtools faidx ref.fa`.
var ErrMissingIndex = errors.New("fasta index not found")

// Index stores the byte offset for each fasta sequence allowing for efficient random access.
type Index struct {
	chroms  []chrOffset    // for search by index
	nameMap map[string]int // maps chr name to index in chroms
}

// chrOffset has offset information about each reference. Equivalent to one line of a fai file.
type chrOffset struct {
	name         string // Name of this reference sequence
	len          int    // Total length of this reference sequence, in bases
	offset       int    // Offset within the FASTA file of this sequence's first base
	basesPerLine int    // The number of bases on each line
	bytesPerLine int    // The number of bytes in each line, including the newline
}

// String method for chrOffset enables easy writing with the fmt package.
func (c chrOffset) String() string {
	return fmt.Sprintf("%s\t%d\t%d\t%d\t%d", c.name, c.len, c.offset, c.basesPerLine, c.bytesPerLine)
}

// String method for Index enables easy writing with the fmt package.
func (idx Index) String() string {
	answer := new(strings.Builder)
	for i := range idx.chroms {
		answer.WriteString(idx.chroms[i].String())
		answer.WriteByte('\n')
	}
	return answer.String()
}

// Size returns the length in bases of the given reference sequence.
func (idx Index) Size(chr string) int {
	return idx.chroms[idx.nameMap[chr]].len
}

// Has returns true if chr is present in the index.
func (idx Index) Has(chr string) bool {
	_, found := idx.nameMap[chr]
	return found
}

// Chroms returns the reference sequence names in index (genome) order.
func (idx Index) Chroms() []string {
	answer := make([]string, len(idx.chroms))
	for i := range idx.chroms {
		answer[i] = idx.chroms[i].name
	}
	return answer
}

// TotalLength returns the summed length of all reference sequences.
func (idx Index) TotalLength() int {
	var total int
	for i := range idx.chroms {
		total += idx.chroms[i].len
	}
	return total
}

// ReadIndex reads a fai index file to an Index struct that can be used for random access.
func ReadIndex(filename string) (Index, error) {
	var answer Index
	if _, err := os.Stat(filename); err != nil {
		return answer, fmt.Errorf("%w: %s", ErrMissingIndex, filename)
	}
	file := fileio.EasyOpen(filename)
	var curr chrOffset
	var line string
	var col []string
	var done bool
	var err error
	for line, done = fileio.EasyNextRealLine(file); !done; line, done = fileio.EasyNextRealLine(file) {
		col = strings.Split(line, "\t")
		if len(col) != 5 {
			return answer, fmt.Errorf("malformed index file %s, error on line: %s", filename, line)
		}

		curr.name = col[0]
		curr.len, err = strconv.Atoi(col[1])
		if err != nil {
			return answer, fmt.Errorf("malformed index file %s, error on line: %s", filename, line)
		}
		curr.offset, err = strconv.Atoi(col[2])
		if err != nil {
			return answer, fmt.Errorf("malformed index file %s, error on line: %s", filename, line)
		}
		curr.basesPerLine, err = strconv.Atoi(col[3])
		if err != nil {
			return answer, fmt.Errorf("malformed index file %s, error on line: %s", filename, line)
		}
		curr.bytesPerLine, err = strconv.Atoi(col[4])
		if err != nil {
			return answer, fmt.Errorf("malformed index file %s, error on line: %s", filename, line)
		}

		answer.chroms = append(answer.chroms, curr)
	}

	err = file.Close()
	if err != nil {
		return answer, err
	}

	answer.nameMap = make(map[string]int)
	for i := range answer.chroms {
		answer.nameMap[answer.chroms[i].name] = i
	}
	return answer, nil
}
