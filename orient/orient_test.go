package orient

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
	"github.com/vertgenlab/gonomics/sam"
)

func makeRead(name string, flag uint16, extra string) sam.Sam {
	var s sam.Sam
	s.QName = name
	s.RName = "*"
	s.RNext = "*"
	s.Seq = dna.StringToBases("ACGT")
	s.Qual = "IIII"
	s.Flag = flag
	s.Extra = extra
	return s
}

func writeBam(t *testing.T, filename string, reads []sam.Sam) {
	t.Helper()
	o := fileio.EasyCreate(filename)
	bw := sam.NewBamWriter(o, sam.GenerateHeader(nil, nil, sam.Unsorted, sam.None))
	for i := range reads {
		sam.WriteToBamFileHandle(bw, reads[i], 0)
	}
	err := bw.Close()
	exception.PanicOnErr(err)
	err = o.Close()
	exception.PanicOnErr(err)
}

func readFlags(t *testing.T, filename string) map[string]uint16 {
	t.Helper()
	flags := make(map[string]uint16)
	reads, _ := sam.GoReadToChan(filename)
	for r := range reads {
		flags[r.QName] = r.Flag
	}
	return flags
}

func TestNormalizeHisat3n(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bam")
	out := filepath.Join(dir, "out.bam")

	writeBam(t, in, []sam.Sam{
		makeRead("ctPaired", 81, "YZ:A:+"),  // paired, reverse: both strand bits cleared
		makeRead("gaPaired", 161, "YZ:A:-"), // paired, forward mate reverse: both strand bits set
		makeRead("ctSingle", 16, "YZ:A:+"),  // unpaired reverse: forced forward
		makeRead("gaSingle", 0, "YZ:A:-"),   // unpaired forward: forced reverse, mate bit untouched
	})

	err := Normalize(in, out)
	if err != nil {
		t.Fatal(err)
	}

	flags := readFlags(t, out)
	if flags["ctPaired"] != 65 {
		t.Error("problem with paired C-to-T read", flags["ctPaired"])
	}
	if flags["gaPaired"] != 177 {
		t.Error("problem with paired G-to-A read", flags["gaPaired"])
	}
	if flags["ctSingle"] != 0 {
		t.Error("problem with unpaired C-to-T read", flags["ctSingle"])
	}
	if flags["gaSingle"] != 16 {
		t.Error("problem with unpaired G-to-A read", flags["gaSingle"])
	}
}

func TestNormalizeBismark(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bam")
	out := filepath.Join(dir, "out.bam")

	writeBam(t, in, []sam.Sam{
		makeRead("ct", 17, "XG:Z:CT"),
		makeRead("ga", 1, "XG:Z:GA"),
	})

	err := Normalize(in, out)
	if err != nil {
		t.Fatal(err)
	}

	flags := readFlags(t, out)
	if flags["ct"] != 1 {
		t.Error("problem with bismark C-to-T read", flags["ct"])
	}
	if flags["ga"] != 49 {
		t.Error("problem with bismark G-to-A read", flags["ga"])
	}
}

func TestNormalizePassthrough(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bam")
	out := filepath.Join(dir, "out.bam")

	writeBam(t, in, []sam.Sam{makeRead("r1", 0, "XG:Z:CT\tNM:i:3")})
	err := Normalize(in, out)
	if err != nil {
		t.Fatal(err)
	}

	reads, _ := sam.GoReadToChan(out)
	for r := range reads {
		if r.QName != "r1" || dna.BasesToString(r.Seq) != "ACGT" || r.Qual != "IIII" {
			t.Error("record content other than flags must pass through", r)
		}
		if _, found, err := sam.QueryTag(r, "NM"); err != nil || !found {
			t.Error("tags must pass through untouched")
		}
	}
}

func TestNormalizeNoTag(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bam")
	out := filepath.Join(dir, "out.bam")

	writeBam(t, in, []sam.Sam{makeRead("r1", 0, "")})
	err := Normalize(in, out)
	if !errors.Is(err, ErrNoConversionTag) {
		t.Error("expected ErrNoConversionTag, got", err)
	}
	// a fatal error must not leave a partial output bam behind
	if _, err = os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Error("partial output should be removed on failure, got", err)
	}
}
