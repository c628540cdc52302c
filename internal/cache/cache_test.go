package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPutGetFresh(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	out := Sum([]byte("class A\n{\n}\n"))

	if ok, err := c.Fresh("brace", "A.java", out); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Put("brace", "A.java", out); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	entry, ok, err := c.Get("brace", "A.java")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if entry.Output != out || entry.Pass != "brace" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if ok, _ := c.Fresh("brace", "A.java", out); !ok {
		t.Error("expected fresh")
	}
	if ok, _ := c.Fresh("brace", "A.java", Sum([]byte("changed"))); ok {
		t.Error("changed content must not be fresh")
	}
	if ok, _ := c.Fresh("addpkg:x", "A.java", out); ok {
		t.Error("entries are per pass")
	}
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put("brace", "A.java", Sum(nil)); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "passes"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".mp" {
		t.Errorf("unexpected cache files %v", entries)
	}
}

func TestCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(c.pathFor("brace", "A.java")), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.pathFor("brace", "A.java"), []byte{0xc1}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Get("brace", "A.java"); err == nil {
		t.Error("expected decode error")
	}
}

func TestDropAll(t *testing.T) {
	c, err := OpenDir(filepath.Join(t.TempDir(), "jtidy"))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put("brace", "A.java", Sum(nil)); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll returned error: %v", err)
	}
	if _, ok, _ := c.Get("brace", "A.java"); ok {
		t.Error("entry survived DropAll")
	}
	if err := c.Put("brace", "B.java", Sum(nil)); err != nil {
		t.Errorf("cache unusable after DropAll: %v", err)
	}
}

func TestNilCache(t *testing.T) {
	var c *DiskCache
	if err := c.Put("p", "f", Sum(nil)); err != nil {
		t.Error(err)
	}
	if ok, err := c.Fresh("p", "f", Sum(nil)); ok || err != nil {
		t.Errorf("nil cache: ok=%v err=%v", ok, err)
	}
}

func TestOpenUsesUserCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	base, err := os.UserCacheDir()
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	c, err := Open("jtidy")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(base, "jtidy"); c.Dir() != want {
		t.Errorf("Dir() = %q, want %q", c.Dir(), want)
	}
	if info, err := os.Stat(c.Dir()); err != nil || !info.IsDir() {
		t.Errorf("cache dir not created: %v", err)
	}
}
