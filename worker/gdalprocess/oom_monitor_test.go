package gdalprocess

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func writeProc(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadKeyValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meminfo")
	writeProc(t, path, "MemTotal:       16303412 kB\nMemFree:         1219512 kB\nMemAvailable:    8061160 kB\n")

	sizes, _, err := readKeyValues(path, "MemTotal", "MemAvailable")
	if err != nil {
		t.Fatal(err)
	}
	if sizes["MemTotal"] != 16303412*1024 || sizes["MemAvailable"] != 8061160*1024 {
		t.Errorf("got %v", sizes)
	}
	if _, _, err := readKeyValues(path, "SwapTotal"); err == nil {
		t.Error("missing key accepted")
	}
}

func TestLargestWorker(t *testing.T) {
	dir := t.TempDir()
	writeProc(t, filepath.Join(dir, "101", "status"), "Name:\tgcube-gdal-proc\nVmRSS:\t  204800 kB\n")
	writeProc(t, filepath.Join(dir, "102", "status"), "Name:\tgcube-gdal-proc\nVmRSS:\t 1048576 kB\n")
	writeProc(t, filepath.Join(dir, "103", "status"), "Name:\tpostgres\nVmRSS:\t 4194304 kB\n")
	writeProc(t, filepath.Join(dir, "self", "status"), "Name:\tgcube-gdal-proc\nVmRSS:\t 9999999 kB\n")

	w, err := largestWorker(dir, regexp.MustCompile("^gcube-gdal"))
	if err != nil {
		t.Fatal(err)
	}
	if w == nil || w.Pid != 102 || w.RSS != 1048576*1024 {
		t.Errorf("got %+v", w)
	}
}

func TestPollInterval(t *testing.T) {
	mon := NewOOMMonitor("gdal", 1<<30, false)
	if d := mon.pollInterval(1 << 29); d != 0 {
		t.Errorf("below threshold: %v", d)
	}
	if d := mon.pollInterval(1<<30 + 1<<20); d != 100*time.Millisecond {
		t.Errorf("close to threshold: %v", d)
	}
	if d := mon.pollInterval(1 << 40); d != time.Second {
		t.Errorf("plenty of memory: %v", d)
	}
}
