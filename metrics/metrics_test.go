package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type memLogger struct {
	infos []*ExtractionInfo
}

func (l *memLogger) Log(info *ExtractionInfo) { l.infos = append(l.infos, info) }

func TestToJSON(t *testing.T) {
	info := &ExtractionInfo{
		RunID:       "run",
		ItemID:      "item",
		ProductType: "S2_ESA_L1C",
		Path:        "/data/S2A_MSIL1C.SAFE",
		Region:      "POLYGON ((0 0, 1 0, 1 1, 0 0))",
		Duration:    2 * time.Second,
		Products: []*ProductInfo{
			{Name: "S2_ESA_L1C", Width: 2, Height: 2, TimeSteps: 1, Variables: []string{"B2"}, Bytes: 16},
			{Name: "masks", Width: 2, Height: 2, TimeSteps: 1, Variables: []string{"dark"}, Bytes: 16},
		},
	}
	s, err := info.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(s, "\n") || strings.Count(s, "\n") != 1 {
		t.Errorf("not a single JSON line: %q", s)
	}

	var got map[string]interface{}
	if err := json.Unmarshal([]byte(s), &got); err != nil {
		t.Fatal(err)
	}
	if got["status"] != StatusOK || got["bytes_produced"] != float64(32) || got["duration"] != float64(2e9) {
		t.Errorf("got %v", got)
	}
	if _, ok := got["error_kind"]; ok {
		t.Error("empty error kind encoded")
	}

	failed := &ExtractionInfo{Error: "input error: unknown band B13", ErrorKind: "input"}
	s, err = failed.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s, `"status":"failed"`) || !strings.Contains(s, `"error_kind":"input"`) {
		t.Errorf("got %s", s)
	}
}

func TestMetricsCollector(t *testing.T) {
	l := &memLogger{}
	mc := NewMetricsCollector(l)
	if _, err := time.Parse(time.RFC3339, mc.Info.ReqTime); err != nil {
		t.Errorf("request time %q: %v", mc.Info.ReqTime, err)
	}
	mc.Info.Path = "a"
	mc.Log()
	if len(l.infos) != 1 || l.infos[0].Path != "a" {
		t.Errorf("logged %v", l.infos)
	}

	NewMetricsCollector(nil).Log()
}

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()
	l := NewFileLogger(dir, 0, 0, false)
	for i := 0; i < 10; i++ {
		l.Log(&ExtractionInfo{ItemID: "item", ProductType: "S2_THEIA"})
	}
	l.Close()

	files, err := filepath.Glob(filepath.Join(dir, "log*"))
	if err != nil {
		t.Fatal(err)
	}
	lines := 0
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
			if len(line) == 0 {
				continue
			}
			var info ExtractionInfo
			if err := json.Unmarshal([]byte(line), &info); err != nil {
				t.Fatalf("%s: %v", f, err)
			}
			if info.ProductType != "S2_THEIA" {
				t.Errorf("got %+v", info)
			}
			lines++
		}
	}
	if lines != 10 {
		t.Errorf("%d records written", lines)
	}
}
