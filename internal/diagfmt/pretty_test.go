package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"regionck/internal/diag"
	"regionck/internal/source"
)

func demoBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	content := []byte("let job = Cache()\nspawn(job)\ntouch(job)\n")
	fid := fs.AddVirtual("/home/user/project/src/worker.sw", content)
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.RaceSendYieldsRace,
		Message:  "sending 'job' across an isolation boundary risks a data race with 1 later access",
		Primary:  source.Span{File: fid, Start: 18, End: 28},
		Notes: []diag.Note{
			{Span: source.Span{File: fid, Start: 29, End: 39}, Msg: "access here may race"},
		},
	})
	return bag, fs
}

func TestPrettyHeadingAndUnderline(t *testing.T) {
	bag, fs := demoBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeRelative})
	out := buf.String()

	if !strings.Contains(out, "src/worker.sw:2:1: ERROR RACE3001: sending 'job'") {
		t.Errorf("heading missing or malformed:\n%s", out)
	}
	if !strings.Contains(out, "spawn(job)") {
		t.Errorf("source context missing:\n%s", out)
	}
	if !strings.Contains(out, "^~~~~~~~~") {
		t.Errorf("span underline missing:\n%s", out)
	}
	if strings.Contains(out, "note") {
		t.Errorf("notes must be off by default:\n%s", out)
	}
}

func TestPrettyShowsNotes(t *testing.T) {
	bag, fs := demoBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	out := buf.String()

	if !strings.Contains(out, "worker.sw:3:1: note: access here may race") {
		t.Errorf("note heading missing:\n%s", out)
	}
	if !strings.Contains(out, "touch(job)") {
		t.Errorf("note context missing:\n%s", out)
	}
}

func TestPrettyPathModes(t *testing.T) {
	bag, fs := demoBag(t)
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/worker.sw"},
		{"relative", PathModeRelative, "src/worker.sw:"},
		{"basename", PathModeBasename, "worker.sw:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("output lacks %q:\n%s", tt.contains, buf.String())
			}
		})
	}
}

func TestPrettyEmptySpan(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(4)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.IOLoadFileError,
		Message:  "failed to load module file: no such file",
	})
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if !strings.Contains(buf.String(), "<unknown>: ERROR IO4001:") {
		t.Errorf("zero-span diagnostics need a placeholder location:\n%s", buf.String())
	}
}

func TestPrettyIndexedFileSkipsContext(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.AddIndexed("worker.sw", []uint32{10, 20}, 30)
	bag := diag.NewBag(4)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.RacePossibleRacyAccess,
		Message:  "access to 'job' here may race",
		Primary:  source.Span{File: fid, Start: 12, End: 15},
	})
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	out := buf.String()
	if !strings.Contains(out, "worker.sw:2:2: WARNING RACE3002:") {
		t.Errorf("line/col must resolve from the index:\n%s", out)
	}
	if strings.Contains(out, "^") {
		t.Errorf("no content means no underline:\n%s", out)
	}
}
