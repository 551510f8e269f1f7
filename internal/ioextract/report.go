package ioextract

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/FriendsInGlobalHealth/fghextractor/internal/iofs"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"gopkg.in/yaml.v3"
)

// Report summarizes one extraction run. It is written next to the dump.
type Report struct {
	RunID          string           `yaml:"run_id"`
	SourceDatabase string           `yaml:"source_database"`
	TargetDatabase string           `yaml:"target_database"`
	LocationIDs    []int            `yaml:"location_ids"`
	EndDate        string           `yaml:"end_date"`
	Phase          subset.Phase     `yaml:"phase"`
	FailedAt       string           `yaml:"failed_at,omitempty"`
	Error          string           `yaml:"error,omitempty"`
	StartedAt      time.Time        `yaml:"started_at"`
	Duration       string           `yaml:"duration"`
	DumpFile       string           `yaml:"dump_file,omitempty"`
	Dropped        bool             `yaml:"target_dropped"`
	TotalRows      int64            `yaml:"total_rows"`
	Rows           map[string]int64 `yaml:"rows"`
}

// ReportPath returns where the report of a run is written.
func ReportPath(dumpDir, dumpFile, target string, started time.Time) string {
	if dumpFile != "" {
		return dumpFile + ".report.yaml"
	}
	name := fmt.Sprintf("%s.%s.report.yaml",
		target, started.Format("2006-01-02T15:04:05"))
	return filepath.Join(dumpDir, name)
}

// WriteReport saves the report as YAML.
func WriteReport(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return iofs.WriteFileError(path, err)
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return iofs.WriteFileError(path, err)
	}
	return nil
}

// ledger tracks which tables exist in the target and how many rows each
// received. Copy jobs of a batch update it concurrently.
type ledger struct {
	mu     sync.Mutex
	rows   map[string]int64
	tables map[string]struct{}
}

func newLedger() *ledger {
	return &ledger{
		rows:   make(map[string]int64),
		tables: make(map[string]struct{}),
	}
}

func (l *ledger) created(table string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tables[table] = struct{}{}
}

func (l *ledger) copied(table string, n int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tables[table] = struct{}{}
	l.rows[table] += n
}

func (l *ledger) has(table string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.tables[table]
	return ok
}

func (l *ledger) snapshot() (map[string]int64, int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var total int64
	for _, v := range l.rows {
		total += v
	}
	return maps.Clone(l.rows), total
}
