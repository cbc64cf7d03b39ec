package allc

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// Writer accumulates formatted ALLC rows and flushes them to a block-gzipped
// output file in bounded-size batches, so peak memory is independent of
// genome size. Per-context statistics are tracked for every accepted row.
type Writer struct {
	file      *os.File
	bg        *bgzf.Writer
	buf       strings.Builder
	rows      int
	batchSize int
	stats     Stats
}

// NewWriter creates filename and prepares a bgzf stream at the given gzip
// compression level. Block gzip keeps the finished file tabix-indexable.
func NewWriter(filename string, batchSize, compressLevel int) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	bg, err := bgzf.NewWriterLevel(file, compressLevel, 1)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Writer{file: file, bg: bg, batchSize: batchSize, stats: NewStats()}, nil
}

// Write formats and buffers one row and folds it into the running stats.
// Rows must arrive in ascending (chrom, pos) order; Writer preserves input
// order, it does not sort.
func (w *Writer) Write(r Row) error {
	fmt.Fprintf(&w.buf, "%s\t%d\t%c\t%s\t%d\t%d\t1\n", r.Chrom, r.Pos, r.Strand, r.Context, r.MC, r.Cov)
	w.stats.Add(r.Context, r.MC, r.Cov)
	w.rows++
	if w.rows > w.batchSize {
		return w.flush()
	}
	return nil
}

func (w *Writer) flush() error {
	if w.rows == 0 {
		return nil
	}
	_, err := w.bg.Write([]byte(w.buf.String()))
	w.buf.Reset()
	w.rows = 0
	return err
}

// Stats returns the per-context totals accumulated so far.
func (w *Writer) Stats() Stats {
	return w.stats
}

// Close flushes any buffered rows and closes the bgzf stream and file.
func (w *Writer) Close() error {
	err := w.flush()
	if err != nil {
		w.bg.Close()
		w.file.Close()
		return err
	}
	err = w.bg.Close()
	if err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Tabix builds a genomic positional index over a finished ALLC file:
// sequence name from column 1, 1-base interval start and end both from
// column 2. tabix must be on PATH.
func Tabix(filename string) error {
	out, err := exec.Command("tabix", "-b", "2", "-e", "2", "-s", "1", filename).CombinedOutput()
	if err != nil {
		return fmt.Errorf("tabix failed on %s: %v: %s", filename, err, strings.TrimSpace(string(out)))
	}
	return nil
}
