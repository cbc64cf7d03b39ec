package fai

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnknownChrom is returned when a requested sequence is absent from the index.
var ErrUnknownChrom = errors.New("chromosome not present in fasta index")

// SeqReader retrieves whole chromosome sequences from an indexed fasta file.
// At most one chromosome sequence is held in memory at a time; requesting a
// different chromosome replaces the cached sequence wholesale. Callers working
// through a coordinate sorted stream therefore pay one bulk read per
// chromosome transition.
type SeqReader struct {
	file    *os.File
	idx     Index
	curName string
	curSeq  string
}

// NewSeqReader opens fastaPath for random access using a previously read Index.
func NewSeqReader(fastaPath string, idx Index) (*SeqReader, error) {
	file, err := os.Open(fastaPath)
	if err != nil {
		return nil, err
	}
	return &SeqReader{file: file, idx: idx}, nil
}

// Index returns the fasta index backing this reader.
func (sr *SeqReader) Index() Index {
	return sr.idx
}

// Chromosome returns the full upper-cased sequence of the named chromosome.
// The returned sequence is cached until a different chromosome is requested.
// A stale index relative to the fasta file is not detected here.
func (sr *SeqReader) Chromosome(name string) (string, error) {
	if name == sr.curName && sr.curSeq != "" {
		return sr.curSeq, nil
	}
	i, found := sr.idx.nameMap[name]
	if !found {
		return "", fmt.Errorf("%w: %s", ErrUnknownChrom, name)
	}
	entry := sr.idx.chroms[i]

	_, err := sr.file.Seek(int64(entry.offset), io.SeekStart)
	if err != nil {
		return "", err
	}

	var seq strings.Builder
	seq.Grow(entry.len)
	br := bufio.NewReader(sr.file)
	var line string
	for {
		line, err = br.ReadString('\n')
		if len(line) > 0 && line[0] == '>' {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) > entry.basesPerLine {
			line = line[:entry.basesPerLine]
		}
		seq.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	sr.curName = name
	sr.curSeq = strings.ToUpper(seq.String())
	return sr.curSeq, nil
}

// Close closes the underlying fasta file.
func (sr *SeqReader) Close() error {
	return sr.file.Close()
}
