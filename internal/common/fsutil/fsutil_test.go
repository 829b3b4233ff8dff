package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	// Set a deterministic HOME for the duration of this test so we never skip.
	origHome, hadHome := os.LookupEnv("HOME")
	origUserProfile, hadUserProfile := os.LookupEnv("USERPROFILE")
	t.Cleanup(func() {
		if hadHome {
			_ = os.Setenv("HOME", origHome)
		} else {
			_ = os.Unsetenv("HOME")
		}
		if hadUserProfile {
			_ = os.Setenv("USERPROFILE", origUserProfile)
		} else {
			_ = os.Unsetenv("USERPROFILE")
		}
	})

	home := t.TempDir()
	_ = os.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		_ = os.Setenv("USERPROFILE", home)
	}
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	exp, err := ExpandHome("~/logs")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if filepath.Base(exp) != "logs" {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
}

func TestOpenAppend_CreatesParentDir(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "logs", "inference.log")
	f, err := OpenAppend(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("one\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()
	f, err = OpenAppend(p)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_, _ = f.WriteString("two\n")
	f.Close()
	lines, err := ReadLines(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Fatalf("lines=%q", lines)
	}
	if !PathExists(p) {
		t.Fatalf("expected %s to exist", p)
	}
}

func TestReadLines_MissingFile(t *testing.T) {
	lines, err := ReadLines(filepath.Join(t.TempDir(), "nope.log"))
	if err != nil || lines != nil {
		t.Fatalf("lines=%q err=%v", lines, err)
	}
}
