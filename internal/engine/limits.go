package engine

import (
	"fmt"
	"sort"
)

// Limits are the annual income thresholds, in yen, and the warning tiers
// applied against Dependent.
type Limits struct {
	Dependent       float64 `json:"dependent" yaml:"dependent"`
	SocialInsurance float64 `json:"socialInsurance" yaml:"social_insurance"`
	MunicipalTax    float64 `json:"municipalTax" yaml:"municipal_tax"`
	Warning         float64 `json:"warning" yaml:"warning"`
	Danger          float64 `json:"danger" yaml:"danger"`
}

// safetyLine is the share of Dependent treated as the comfortable ceiling.
const safetyLine = 0.9

// Presets maps a rule-set name to its thresholds.
var Presets = map[string]Limits{
	// 103万 income tax wall, 130万 social insurance, 100万 resident tax.
	"legacy": {Dependent: 1030000, SocialInsurance: 1300000, MunicipalTax: 1000000, Warning: 0.9, Danger: 0.95},
	// 2025 reform: basic deduction raises the wall to 123万, resident tax to 110万.
	"2025": {Dependent: 1230000, SocialInsurance: 1300000, MunicipalTax: 1100000, Warning: 0.9, Danger: 0.95},
	// Specific dependents aged 19-22 keep the full deduction up to 150万.
	"student2025": {Dependent: 1500000, SocialInsurance: 1500000, MunicipalTax: 1100000, Warning: 0.9, Danger: 0.95},
}

// DefaultPreset is used when no preset is configured.
const DefaultPreset = "legacy"

// DefaultLimits returns the legacy 103万 thresholds.
func DefaultLimits() Limits {
	return Presets[DefaultPreset]
}

// Preset looks up a named threshold set.
func Preset(name string) (Limits, error) {
	l, ok := Presets[name]
	if !ok {
		names := make([]string, 0, len(Presets))
		for n := range Presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Limits{}, fmt.Errorf("unknown limits preset %q (available: %v)", name, names)
	}
	return l, nil
}

// Validate checks the ordering the analyzers rely on.
func (l Limits) Validate() error {
	if l.Dependent <= 0 {
		return fmt.Errorf("limits.dependent must be positive")
	}
	if l.SocialInsurance <= 0 {
		return fmt.Errorf("limits.social_insurance must be positive")
	}
	if !(0 < l.Warning && l.Warning < l.Danger && l.Danger < 1) {
		return fmt.Errorf("limits require 0 < warning < danger < 1, got warning=%.3f danger=%.3f", l.Warning, l.Danger)
	}
	if l.MunicipalTax >= l.Dependent {
		return fmt.Errorf("limits.municipal_tax (%.0f) must be below limits.dependent (%.0f)", l.MunicipalTax, l.Dependent)
	}
	if l.Dependent > l.SocialInsurance {
		return fmt.Errorf("limits.dependent (%.0f) must not exceed limits.social_insurance (%.0f)", l.Dependent, l.SocialInsurance)
	}
	return nil
}
