package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uidesigner/internal/domain"
)

func sampleProject(name string) domain.Project {
	p := domain.NewProject(name)
	p.Controls = []domain.Control{
		{Kind: domain.Knob, Name: "Knob0", Label: "Gain", Geometry: domain.Rect{X: 10, Y: 10, W: 60, H: 80}, PortIndex: 0, Adjustment: domain.DefaultAdjustment()},
		{Kind: domain.TabBox, Name: "Tab1", Geometry: domain.Rect{X: 100, Y: 10, W: 120, H: 120}, PortIndex: -1, Children: []domain.Control{
			{Kind: domain.Tab, Name: "Tab2", Label: "Tab 1", Geometry: domain.Rect{X: 0, Y: 20, W: 120, H: 100}, PortIndex: -1, Children: []domain.Control{
				{Kind: domain.Button, Name: "Button3", Label: "Bypass", Geometry: domain.Rect{X: 5, Y: 5, W: 60, H: 60}, PortIndex: 1},
			}},
		}},
	}
	return p
}

func TestInitProjectCreatesStructureAndManifest(t *testing.T) {
	root := t.TempDir()
	proj := sampleProject("Test Layout")

	ph, err := InitProject(root, proj)
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	b, err := os.ReadFile(ph.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var got domain.Project
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if got.Name != proj.Name || got.StableID != proj.StableID {
		t.Fatalf("manifest mismatch: got %q/%q", got.Name, got.StableID)
	}
	if domain.Count(got.Controls) != 4 {
		t.Fatalf("expected 4 controls in manifest, got %d", domain.Count(got.Controls))
	}
	for _, d := range []string{ImagesDirName, ExportsDirName, BackupsDirName} {
		p := filepath.Join(root, d)
		if fi, err := os.Stat(p); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s to exist", p)
		}
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, sampleProject("Backup Test"))
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	ph.Project.Metadata.Notes = "changed"
	if err := Save(ph); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	var bakCount int
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			bakCount++
		}
	}
	if bakCount == 0 {
		t.Fatalf("expected at least one backup file, found 0")
	}
}

func TestOpenFallsBackToLatestBackupOnCorruption(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, sampleProject("Open From Backup"))
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	ph.Project.Metadata.Notes = "touch"
	if err := Save(ph); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.WriteFile(ph.ManifestPath, []byte("{ this is not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}
	opened, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if opened.Project.Name != "Open From Backup" || !opened.Recovered {
		t.Fatalf("expected recovered project, got %q recovered=%v", opened.Project.Name, opened.Recovered)
	}
}

func TestOpenRejectsSchemaViolationWithoutBackup(t *testing.T) {
	root := t.TempDir()
	bad := `{"name":"x","stableId":"y","window":{"width":600,"height":400},"controls":[{"kind":"dial","name":"D","geometry":{"x":0,"y":0,"width":10,"height":10},"portIndex":0}]}`
	if err := os.WriteFile(filepath.Join(root, ManifestFileName), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(root); !errors.Is(err, ErrInvalidManifest) {
		t.Fatalf("expected ErrInvalidManifest, got %v", err)
	}
}

func TestSaveAsMovesHandle(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, sampleProject("Orig"))
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	ph.Project.Name = "Renamed"
	newRoot := filepath.Join(root, "copy")
	if err := SaveAs(ph, newRoot); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if ph.Root != newRoot || ph.ManifestPath != filepath.Join(newRoot, ManifestFileName) {
		t.Fatalf("ProjectHandle paths not updated: %+v", ph)
	}
	opened, err := Open(newRoot)
	if err != nil || opened.Project.Name != "Renamed" {
		t.Fatalf("reopen: %v %+v", err, opened)
	}
}

func TestAutosaveCrashSnapshotWritesFile(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, sampleProject("Crash Snapshot"))
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	ph.Project.Name = "Unsaved"
	path, err := AutosaveCrashSnapshot(ph)
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var got domain.Project
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if got.Name != "Unsaved" {
		t.Fatalf("snapshot content mismatch: got %q", got.Name)
	}
	// the manifest itself is untouched
	opened, err := Open(root)
	if err != nil || opened.Project.Name != "Crash Snapshot" {
		t.Fatalf("manifest changed by crash snapshot: %v %+v", err, opened)
	}
}

func TestPruneBackupsKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for _, stamp := range []string{"20250101-000001", "20250101-000002", "20250101-000003"} {
		name := ManifestFileName + "." + stamp + ".bak"
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	pruneBackups(dir, 2)
	names := backupNames(dir)
	if len(names) != 2 || !strings.Contains(names[0], "000002") {
		t.Fatalf("unexpected backups after prune: %v", names)
	}
}
