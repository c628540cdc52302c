package fuzztests

import (
	"bytes"
	"testing"

	"jtidy/internal/pkgdecl"
	"jtidy/internal/source"
)

func FuzzPackageInsert(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		file := source.NewVirtual("fuzz.java", input)

		once, changed := pkgdecl.Insert(file.Lines, "mnj.lua")
		if changed && len(once) != len(file.Lines)+1 {
			t.Fatalf("insert added %d lines", len(once)-len(file.Lines))
		}
		if !changed && !bytes.Equal(file.Render(once), input) {
			t.Fatalf("unchanged file was modified")
		}
		twice, again := pkgdecl.Insert(once, "mnj.lua")
		if again {
			t.Fatalf("second insert changed the file:\n%q", source.JoinLines(twice))
		}
	})
}
