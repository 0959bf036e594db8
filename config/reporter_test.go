package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReport_Archive(t *testing.T) {
	dir := t.TempDir()
	r, err := (&ReporterConfig{Destination: filepath.Join(dir, "report.zip")}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	logo := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(logo, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreCopy("input/logo.png", logo); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	// later changes to the original are not visible in the report
	if err := os.WriteFile(logo, []byte("changed"), 0644); err != nil {
		t.Fatal(err)
	}
	r.StoreData("session.txt", []byte("first"))
	r.StoreData("session.txt", []byte("second"))
	r.Store("missing.log", filepath.Join(dir, "missing.log"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	arc, err := zip.OpenReader(r.Name())
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer arc.Close()

	files := make(map[string]string)
	var sessions int
	for _, f := range arc.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		files[f.Name] = string(data)
		if strings.HasPrefix(f.Name, "session.txt") {
			sessions++
		}
	}
	if files["input/logo.png"] != "png" {
		t.Errorf("stored copy = %q, want original content", files["input/logo.png"])
	}
	if sessions != 2 {
		t.Errorf("session dumps = %d, want 2 versioned entries", sessions)
	}
	if _, ok := files["missing.log"]; ok {
		t.Error("absent file was archived")
	}
	if !strings.Contains(files["MANIFEST"], "input/logo.png") {
		t.Errorf("MANIFEST does not list stored copy:\n%s", files["MANIFEST"])
	}
}

func TestReport_Nil(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy() on nil report error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() on nil report error = %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name() = %q, want empty", r.Name())
	}
}
