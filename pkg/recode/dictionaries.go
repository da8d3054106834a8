package recode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unknown is the explicit category for raw codes with no mapping.
// Unmapped codes never propagate as missing values: a patient whose
// stage code is unrecognized still has a stage category.
const Unknown = "unknown"

// Dictionaries holds the static recoding tables. They are pure data,
// loaded once at startup and never mutated, so clinical-coding updates
// are a config change rather than a code change.
type Dictionaries struct {
	GroupStage   map[string]string `yaml:"group_stage" json:"group_stage"`
	TStage       map[string]string `yaml:"t_stage" json:"t_stage"`
	NStage       map[string]string `yaml:"n_stage" json:"n_stage"`
	MStage       map[string]string `yaml:"m_stage" json:"m_stage"`
	Gleason      map[string]string `yaml:"gleason" json:"gleason"`
	StateRegions map[string]string `yaml:"state_regions" json:"state_regions"`
}

// Load reads recoding dictionaries from a YAML file, falling back to
// the compiled-in defaults when no path is given.
func Load(path string) (Dictionaries, error) {
	if path == "" {
		return Defaults(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Defaults(), err
	}
	var dicts Dictionaries
	if err := yaml.Unmarshal(content, &dicts); err != nil {
		return Dictionaries{}, err
	}
	if dicts.GroupStage == nil && dicts.TStage == nil && dicts.Gleason == nil {
		return Dictionaries{}, fmt.Errorf("recoding dictionary file %s is empty", path)
	}
	return dicts, nil
}

// Map normalizes a raw code through one of the tables. Blank input is
// missing and stays missing (nil); an unmapped non-blank code becomes
// the explicit Unknown category.
func Map(table map[string]string, raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if mapped, ok := table[trimmed]; ok {
		return &mapped
	}
	unknown := Unknown
	return &unknown
}

// Declared rank orders for the ordinal categories. Unknown has no rank.
var (
	GroupStageOrder = []string{"I", "II", "III", "IV"}
	TStageOrder     = []string{"T1", "T2", "T3", "T4"}
	GleasonOrder    = []string{"1", "2", "3", "4", "5"}
	EcogOrder       = []int{0, 1, 2, 3, 4}
)

// Rank returns the position of a category within a declared order, or
// -1 for Unknown and anything else outside the order.
func Rank(order []string, category string) int {
	for i, c := range order {
		if c == category {
			return i
		}
	}
	return -1
}

func Defaults() Dictionaries {
	return Dictionaries{
		GroupStage: map[string]string{
			"IV":   "IV",
			"IVA":  "IV",
			"IVB":  "IV",
			"III":  "III",
			"IIIA": "III",
			"IIIB": "III",
			"IIIC": "III",
			"II":   "II",
			"IIA":  "II",
			"IIB":  "II",
			"IIC":  "II",
			"I":    "I",
			"Unknown / Not documented": Unknown,
		},
		TStage: map[string]string{
			"T4":  "T4",
			"T3":  "T3",
			"T3a": "T3",
			"T3b": "T3",
			"T2":  "T2",
			"T2a": "T2",
			"T2b": "T2",
			"T2c": "T2",
			"T1":  "T1",
			"T1a": "T1",
			"T1b": "T1",
			"T1c": "T1",
			// T0 folds into T1; TX carries no staging information.
			"T0": "T1",
			"TX": Unknown,
			"Unknown / Not documented": Unknown,
		},
		NStage: map[string]string{
			"N1": "N1",
			"N0": "N0",
			"NX": Unknown,
			"Unknown / Not documented": Unknown,
		},
		MStage: map[string]string{
			"M1":  "M1",
			"M1a": "M1",
			"M1b": "M1",
			"M1c": "M1",
			"M0":  "M0",
			"Unknown / Not documented": Unknown,
		},
		Gleason: map[string]string{
			"10":        "5",
			"9":         "5",
			"8":         "4",
			"4 + 3 = 7": "3",
			// Undifferentiated 7 goes to grade group 3.
			"7 (when breakdown not available)": "3",
			"3 + 4 = 7":                        "2",
			"Less than or equal to 6":          "1",
			"Unknown / Not documented":         Unknown,
		},
		StateRegions: map[string]string{
			"ME": "northeast",
			"NH": "northeast",
			"VT": "northeast",
			"MA": "northeast",
			"CT": "northeast",
			"RI": "northeast",
			"NY": "northeast",
			"NJ": "northeast",
			"PA": "northeast",
			"IL": "midwest",
			"IN": "midwest",
			"MI": "midwest",
			"OH": "midwest",
			"WI": "midwest",
			"IA": "midwest",
			"KS": "midwest",
			"MN": "midwest",
			"MO": "midwest",
			"NE": "midwest",
			"ND": "midwest",
			"SD": "midwest",
			"DE": "south",
			"FL": "south",
			"GA": "south",
			"MD": "south",
			"NC": "south",
			"SC": "south",
			"VA": "south",
			"DC": "south",
			"WV": "south",
			"AL": "south",
			"KY": "south",
			"MS": "south",
			"TN": "south",
			"AR": "south",
			"LA": "south",
			"OK": "south",
			"TX": "south",
			"AZ": "west",
			"CO": "west",
			"ID": "west",
			"MT": "west",
			"NV": "west",
			"NM": "west",
			"UT": "west",
			"WY": "west",
			"AK": "west",
			"CA": "west",
			"HI": "west",
			"OR": "west",
			"WA": "west",
			"PR": Unknown,
		},
	}
}
