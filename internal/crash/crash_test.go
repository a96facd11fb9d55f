package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uidesigner/internal/domain"
	"uidesigner/internal/storage"
)

func TestReportWithoutLayoutGoesToTempDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != tmp {
		t.Fatalf("report at %s, want it in %s", path, tmp)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	for _, want := range []string{"UI Designer Crash Report", "Panic: boom", "Stack:\nstacktrace"} {
		if !strings.Contains(s, want) {
			t.Fatalf("report lacks %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "Layout:") {
		t.Fatalf("report names a layout although none was open:\n%s", s)
	}
}

func TestReportDescribesOpenLayout(t *testing.T) {
	root := t.TempDir()
	ph := &storage.ProjectHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, storage.ManifestFileName),
		Project: domain.Project{
			Name:     "Chorus",
			StableID: "chorus-1",
			Controls: []domain.Control{
				{Kind: domain.Frame, Name: "Frame0", Children: []domain.Control{{Kind: domain.Knob, Name: "Knob0"}}},
				{Kind: domain.Button, Name: "Button0"},
			},
		},
	}

	path, err := writeReport(ph, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(root, storage.BackupsDirName) {
		t.Fatalf("expected crash report under backups dir, got %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "Layout: Chorus (chorus-1), 3 controls\n") {
		t.Fatalf("layout line missing:\n%s", b)
	}
	if !strings.Contains(string(b), "Manifest: "+ph.ManifestPath) {
		t.Fatalf("manifest path missing:\n%s", b)
	}
}
