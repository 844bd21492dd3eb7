package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLog_WritesWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")

	Log("seq", "dropped before enable")
	if err := EnableAt(path); err != nil {
		t.Fatalf("EnableAt: %v", err)
	}
	defer Disable()

	Log("seq", "note %d on", 3)
	for i := 0; i < 4; i++ {
		LogEvery(2, "audio", "underrun")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "dropped before enable") {
		t.Error("message logged before Enable")
	}
	if !strings.Contains(out, "note 3 on") {
		t.Errorf("missing log line, got:\n%s", out)
	}
	if n := strings.Count(out, "underrun"); n != 2 {
		t.Errorf("LogEvery(2) wrote %d lines over 4 calls, want 2", n)
	}
}

func TestDisable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := EnableAt(path); err != nil {
		t.Fatal(err)
	}
	Disable()
	if Enabled() {
		t.Fatal("Enabled after Disable")
	}
	Log("seq", "after disable")

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "after disable") {
		t.Error("logged after Disable")
	}
}
