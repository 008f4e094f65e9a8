package gdalprocess

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	humanize "github.com/dustin/go-humanize"
	"golang.org/x/net/context"
)

// readKeyValues reads the "Key:   value" lines of a /proc file.  Values
// in kB are returned in bytes in sizes, the others in strs.
func readKeyValues(path string, keys ...string) (sizes map[string]int64, strs map[string]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	sizes = make(map[string]int64)
	strs = make(map[string]string)

	sc := bufio.NewScanner(f)
	for sc.Scan() && len(sizes)+len(strs) < len(wanted) {
		kv := strings.SplitN(sc.Text(), ":", 2)
		if len(kv) != 2 || !wanted[strings.TrimSpace(kv[0])] {
			continue
		}
		key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		if !strings.HasSuffix(val, " kB") {
			strs[key] = val
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSuffix(val, " kB"), 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: failed to parse %s", path, sc.Text())
		}
		sizes[key] = n * 1024
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	for k := range wanted {
		_, isSize := sizes[k]
		_, isStr := strs[k]
		if !isSize && !isStr {
			return nil, nil, fmt.Errorf("%s: %s not found", path, k)
		}
	}
	return sizes, strs, nil
}

type worker struct {
	Name string
	Pid  int
	RSS  int64
}

// largestWorker finds the process under procDir whose name matches
// pattern and whose resident set is the largest.
func largestWorker(procDir string, pattern *regexp.Regexp) (*worker, error) {
	entries, err := os.ReadDir(procDir)
	if err != nil {
		return nil, err
	}
	self := os.Getpid()
	var largest *worker
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || !e.IsDir() || pid <= 1 || pid == self {
			continue
		}
		sizes, strs, err := readKeyValues(filepath.Join(procDir, e.Name(), "status"), "Name", "VmRSS")
		if err != nil || !pattern.MatchString(strs["Name"]) {
			continue
		}
		if largest == nil || sizes["VmRSS"] > largest.RSS {
			largest = &worker{Name: strs["Name"], Pid: pid, RSS: sizes["VmRSS"]}
		}
	}
	return largest, nil
}

// OOMMonitor kills the largest extraction worker when the available
// memory of the host drops below a threshold, before the kernel OOM
// killer picks a process of its own choosing.  The process pool then
// replaces the killed worker and its request fails.
type OOMMonitor struct {
	ExecMatch string
	// Threshold is the available memory, in bytes, under which a
	// worker is killed.
	Threshold int64
	Verbose   bool

	procDir string
}

func NewOOMMonitor(execMatch string, threshold int64, verbose bool) *OOMMonitor {
	return &OOMMonitor{ExecMatch: execMatch, Threshold: threshold, Verbose: verbose, procDir: "/proc"}
}

// pollInterval is the time the available memory would take to reach
// the threshold when filling at 6 GB/s, kept within [100ms, 1s].  It
// is 0 once the threshold is crossed.
func (mon *OOMMonitor) pollInterval(available int64) time.Duration {
	const fillRate = 6000 * 1024 * 1024
	remaining := available - mon.Threshold
	if remaining <= 0 {
		return 0
	}
	d := time.Duration(float64(remaining) / fillRate * float64(time.Second))
	if d < 100*time.Millisecond {
		return 100 * time.Millisecond
	}
	if d > time.Second {
		return time.Second
	}
	return d
}

// Run polls until ctx is done.
func (mon *OOMMonitor) Run(ctx context.Context) error {
	pattern, err := regexp.Compile(mon.ExecMatch)
	if err != nil {
		return err
	}
	first := true
	for {
		sizes, _, err := readKeyValues(filepath.Join(mon.procDir, "meminfo"), "MemTotal", "MemAvailable")
		if err != nil {
			return err
		}
		if mon.Verbose && first {
			log.Printf("oom monitor: total memory %s, available %s, threshold %s",
				humanize.IBytes(uint64(sizes["MemTotal"])), humanize.IBytes(uint64(sizes["MemAvailable"])), humanize.IBytes(uint64(mon.Threshold)))
			first = false
		}

		wait := mon.pollInterval(sizes["MemAvailable"])
		if wait == 0 {
			w, err := largestWorker(mon.procDir, pattern)
			if err != nil {
				return err
			}
			if w != nil {
				mon.kill(w)
			}
			wait = time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (mon *OOMMonitor) kill(w *worker) {
	syscall.Kill(w.Pid, syscall.SIGKILL)
	if mon.Verbose {
		log.Printf("oom monitor: SIGKILL sent to %s (PID %d, %s resident)", w.Name, w.Pid, humanize.IBytes(uint64(w.RSS)))
	}
	start := time.Now()
	for i := 0; i < 100; i++ {
		if syscall.Kill(w.Pid, 0) != nil {
			if mon.Verbose {
				log.Printf("oom monitor: %s (PID %d) terminated in %v", w.Name, w.Pid, time.Since(start))
			}
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}
