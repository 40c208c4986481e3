package diag

import (
	"testing"

	"regionck/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/testdata/golden/sample.lir", []byte("a\nb\n"), 0)
	shimFile := fs.Add("/workspace/runtime/shim.lir", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevError,
			Code:     RaceSendYieldsRace,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: shimFile, Start: 0, End: 0}, Msg: "skip me"},
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevWarning,
			Code:     IRUnreachableBlock,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "error RACE3001 testdata/golden/sample.lir:1:1 first line second\n" +
		"note RACE3001 testdata/golden/sample.lir:2:1 note line\n" +
		"warning IR1008 testdata/golden/sample.lir:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(16)
	sp := func(start uint32) source.Span { return source.Span{File: 0, Start: start, End: start + 1} }

	bag.Add(NewWarning(IRUnreachableBlock, sp(10), "later"))
	bag.Add(NewError(RaceSendYieldsRace, sp(2), "race"))
	bag.Add(NewError(RaceSendYieldsRace, sp(2), "race"))
	bag.Add(New(SevInfo, ObsTimings, sp(2), "timing"))

	bag.Sort()
	bag.Dedup()

	items := bag.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 diagnostics after dedup, got %d", len(items))
	}
	if items[0].Code != RaceSendYieldsRace {
		t.Errorf("error at earliest span must sort first, got %v", items[0].Code)
	}
	if items[1].Code != ObsTimings {
		t.Errorf("info at same span must follow error, got %v", items[1].Code)
	}
	if items[2].Code != IRUnreachableBlock {
		t.Errorf("warning at later span must sort last, got %v", items[2].Code)
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewError(UnknownCode, source.Span{}, "one")) {
		t.Fatal("first add must succeed")
	}
	if bag.Add(NewError(UnknownCode, source.Span{}, "two")) {
		t.Fatal("second add must hit the limit")
	}
	if !bag.HasErrors() {
		t.Error("expected HasErrors")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(8)
	r := NewDedupReporter(BagReporter{Bag: bag})

	sp := source.Span{File: 0, Start: 5, End: 9}
	r.Report(RaceSendYieldsRace, SevError, sp, "race here", nil)
	r.Report(RaceSendYieldsRace, SevError, sp, "race here", nil)
	r.Report(RaceSendYieldsRace, SevError, sp, "different message", nil)

	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestCodeID(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{IRUnknownValue, "IR1001"},
		{RaceSendIsolatedRegion, "RACE3003"},
		{IOLoadFileError, "IO4001"},
		{ObsTimings, "OBS6001"},
		{UnknownCode, "E0000"},
	}
	for _, c := range cases {
		if got := c.code.ID(); got != c.want {
			t.Errorf("Code(%d).ID() = %q, want %q", c.code, got, c.want)
		}
	}
}
