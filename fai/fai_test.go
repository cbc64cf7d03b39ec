package fai

import (
	"errors"
	"testing"
)

func TestReadIndex(t *testing.T) {
	idx, err := ReadIndex("testdata/tiny.fa.fai")
	if err != nil {
		t.Fatal(err)
	}
	if !idx.Has("chr1") || !idx.Has("chr2") || idx.Has("chr3") {
		t.Error("problem with index membership", idx)
	}
	if idx.Size("chr1") != 15 || idx.Size("chr2") != 6 {
		t.Error("problem with chromosome sizes", idx)
	}
	if idx.TotalLength() != 21 {
		t.Error("problem with total length", idx.TotalLength())
	}
	chroms := idx.Chroms()
	if len(chroms) != 2 || chroms[0] != "chr1" || chroms[1] != "chr2" {
		t.Error("problem with chromosome order", chroms)
	}
	if idx.String() != "chr1\t15\t6\t10\t11\nchr2\t6\t29\t6\t7\n" {
		t.Error("problem with index round trip", idx.String())
	}
}

func TestReadIndexMissing(t *testing.T) {
	_, err := ReadIndex("testdata/nonexistent.fa.fai")
	if !errors.Is(err, ErrMissingIndex) {
		t.Error("expected ErrMissingIndex, got", err)
	}
}

func TestReadIndexMalformed(t *testing.T) {
	_, err := ReadIndex("testdata/malformed.fa.fai")
	if err == nil {
		t.Error("expected an error for a malformed index")
	}
}

func TestSeqReader(t *testing.T) {
	idx, err := ReadIndex("testdata/tiny.fa.fai")
	if err != nil {
		t.Fatal(err)
	}
	sr, err := NewSeqReader("testdata/tiny.fa", idx)
	if err != nil {
		t.Fatal(err)
	}
	defer sr.Close()

	seq, err := sr.Chromosome("chr1")
	if err != nil {
		t.Fatal(err)
	}
	if seq != "ACGTCGATTGCGATT" {
		t.Error("problem with chr1 sequence", seq)
	}

	// cache is replaced on transition, then refilled on re-entry
	seq, err = sr.Chromosome("chr2")
	if err != nil {
		t.Fatal(err)
	}
	if seq != "GGGCCC" {
		t.Error("problem with chr2 sequence", seq)
	}
	seq, err = sr.Chromosome("chr1")
	if err != nil {
		t.Fatal(err)
	}
	if seq != "ACGTCGATTGCGATT" {
		t.Error("problem with chr1 sequence after cache swap", seq)
	}

	_, err = sr.Chromosome("chrX")
	if !errors.Is(err, ErrUnknownChrom) {
		t.Error("expected ErrUnknownChrom, got", err)
	}
}
