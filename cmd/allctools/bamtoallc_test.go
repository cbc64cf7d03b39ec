package main

import "testing"

func TestStrandFlagConflict(t *testing.T) {
	if !strandFlagConflict(true, "input.pileup") {
		t.Error("convert-strand with a pre-made pileup must be rejected")
	}
	if !strandFlagConflict(true, "-") {
		t.Error("convert-strand with a stdin pileup must be rejected")
	}
	if strandFlagConflict(true, "") {
		t.Error("convert-strand with a bam input is valid")
	}
	if strandFlagConflict(false, "input.pileup") {
		t.Error("a pre-made pileup without convert-strand is valid")
	}
}
