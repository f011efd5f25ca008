package binary

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeArchiveFile(t *testing.T, build func(w *zip.Writer)) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	build(w)
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	path := filepath.Join(t.TempDir(), "archive.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func TestExtractZipNestedLayout(t *testing.T) {
	archive := writeArchiveFile(t, func(w *zip.Writer) {
		for name, content := range map[string]string{
			"chia":              "executable",
			"docs/README.md":    "docs",
			"docs/sub/LEGAL":    "legal",
			"empty-dirless.txt": "top",
		} {
			fw, err := w.Create(name)
			if err != nil {
				t.Fatalf("create entry: %v", err)
			}
			fw.Write([]byte(content))
		}
	})

	dest := t.TempDir()
	if err := NewExtractor().ExtractZip(archive, dest); err != nil {
		t.Fatalf("ExtractZip failed: %v", err)
	}

	for path, want := range map[string]string{
		"chia":           "executable",
		"docs/README.md": "docs",
		"docs/sub/LEGAL": "legal",
	} {
		data, err := os.ReadFile(filepath.Join(dest, path))
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(data) != want {
			t.Errorf("%s contents = %q, want %q", path, data, want)
		}
	}
}

func TestExtractZipPreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	archive := writeArchiveFile(t, func(w *zip.Writer) {
		hdr := &zip.FileHeader{Name: "chia", Method: zip.Deflate}
		hdr.SetMode(0755)
		fw, err := w.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		fw.Write([]byte("executable"))
	})

	dest := t.TempDir()
	if err := NewExtractor().ExtractZip(archive, dest); err != nil {
		t.Fatalf("ExtractZip failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dest, "chia"))
	if err != nil {
		t.Fatalf("stat extracted file: %v", err)
	}
	if got := info.Mode().Perm(); got != 0755 {
		t.Errorf("mode = %v, want 0755", got)
	}
}

func TestExtractZipRejectsTraversal(t *testing.T) {
	archive := writeArchiveFile(t, func(w *zip.Writer) {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: "../evil.txt", Method: zip.Deflate})
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		fw.Write([]byte("escape"))
	})

	parent := t.TempDir()
	dest := filepath.Join(parent, "inner")
	if err := NewExtractor().ExtractZip(archive, dest); err == nil {
		t.Fatal("expected error for traversal entry")
	}
	if _, err := os.Stat(filepath.Join(parent, "evil.txt")); !os.IsNotExist(err) {
		t.Error("traversal entry escaped the destination directory")
	}
}

func TestExtractZipMissingArchive(t *testing.T) {
	err := NewExtractor().ExtractZip(filepath.Join(t.TempDir(), "nope.zip"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing archive")
	}
}

func TestSetExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "chia")
	if err := os.WriteFile(path, []byte("node"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := SetExecutable(path); err != nil {
		t.Fatalf("SetExecutable failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}
}
