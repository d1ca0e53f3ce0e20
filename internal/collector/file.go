package collector

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"FuyouSentinel/internal/model"
)

// Export is the dashboard's JSON backup format. CurrentIncome is optional.
// A FileSource reports it through ReportedIncome and Collect prefers it over
// the shift sum; importing an export into the shift store keeps only the
// shifts and workplaces.
type Export struct {
	CurrentIncome *float64          `json:"currentIncome,omitempty"`
	Shifts        []model.Shift     `json:"shifts"`
	Workplaces    []model.Workplace `json:"workplaces"`
}

// LoadExport reads an Export from a JSON file.
func LoadExport(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	return &exp, nil
}

// FileSource implements Source over a JSON export on disk. The file is
// re-read on every fetch so edits are picked up without a restart.
type FileSource struct {
	Path string
}

// NewFileSource creates a new file-backed source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) FetchShifts(from, to time.Time) ([]model.Shift, error) {
	exp, err := LoadExport(f.Path)
	if err != nil {
		return nil, err
	}
	return filterByDate(exp.Shifts, from, to), nil
}

func (f *FileSource) FetchWorkplaces() ([]model.Workplace, error) {
	exp, err := LoadExport(f.Path)
	if err != nil {
		return nil, err
	}
	return exp.Workplaces, nil
}

// ReportedIncome returns the export's currentIncome when present.
func (f *FileSource) ReportedIncome() (float64, bool, error) {
	exp, err := LoadExport(f.Path)
	if err != nil {
		return 0, false, err
	}
	if exp.CurrentIncome == nil {
		return 0, false, nil
	}
	return *exp.CurrentIncome, true, nil
}
