package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/forage/config"
)

// WriteDays writes day records as CSV with a header row.
func WriteDays(w io.Writer, days []DayStats) error {
	if err := gocsv.Marshal(days, w); err != nil {
		return fmt.Errorf("writing days: %w", err)
	}
	return nil
}

// ReadDays parses day records written by WriteDays.
func ReadDays(r io.Reader) ([]DayStats, error) {
	var days []DayStats
	if err := gocsv.Unmarshal(r, &days); err != nil {
		return nil, fmt.Errorf("reading days: %w", err)
	}
	return days, nil
}

// OutputManager writes the run report into a directory: days.csv, one row
// per completed day, and config.yaml with the parameters used.
type OutputManager struct {
	dir      string
	daysFile *os.File

	// Track if headers have been written
	daysHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "days.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating days.csv: %w", err)
	}

	return &OutputManager{dir: dir, daysFile: f}, nil
}

// Dir returns the output directory.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// WriteConfig saves the configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteDay appends one day record to days.csv.
func (om *OutputManager) WriteDay(stats DayStats) error {
	if om == nil {
		return nil
	}

	records := []DayStats{stats}

	if !om.daysHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.daysFile); err != nil {
			return fmt.Errorf("writing day: %w", err)
		}
		om.daysHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.daysFile); err != nil {
			return fmt.Errorf("writing day: %w", err)
		}
	}

	return nil
}

// Close closes the output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	if err := om.daysFile.Close(); err != nil {
		return fmt.Errorf("closing days.csv: %w", err)
	}
	return nil
}
