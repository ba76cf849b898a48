package system

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats are the counters of one run, printed as the performance report.
type Stats struct {
	Documents       int
	FailedDocuments int
	Pages           int
	Blocks          int
	Records         int
	Elapsed         time.Duration
}

// MemoryUsage returns the resident set size of this process and the share
// of system memory in use. Failures are reported as zero values.
func MemoryUsage() (rssMB float64, usedPercent float64) {
	if vm, err := mem.VirtualMemory(); err == nil {
		usedPercent = vm.UsedPercent
	}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, usedPercent
	}
	if mi, err := p.MemoryInfo(); err == nil {
		rssMB = float64(mi.RSS) / (1 << 20)
	}
	return rssMB, usedPercent
}

func (s Stats) Report(build string) string {
	rss, used := MemoryUsage()
	perPage := 0.0
	if s.Pages > 0 {
		perPage = s.Elapsed.Seconds() / float64(s.Pages)
	}
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Documents: %d (failed: %d)\n"+
			"Pages: %d | Blocks: %d | Records: %d\n"+
			"Total Time: %.2fs (%.2fs/page)\n"+
			"Memory: RSS %.1f MB | System used %.1f%%\n"+
			"----------------------------\n",
		build, s.Documents, s.FailedDocuments, s.Pages, s.Blocks, s.Records,
		s.Elapsed.Seconds(), perPage, rss, used,
	)
}

// LogLine is the single-line form appended to benchmark.log.
func (s Stats) LogLine(build, input string) string {
	return fmt.Sprintf("[%s] Build: %s | Input: %s | Docs: %d | Pages: %d | Records: %d | Total: %.2fs\n",
		time.Now().Format("2006-01-02 15:04:05"),
		build, input, s.Documents, s.Pages, s.Records, s.Elapsed.Seconds(),
	)
}

// AppendBenchmark appends the run to path (benchmark.log by default).
func AppendBenchmark(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line)
	return err
}
