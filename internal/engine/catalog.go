package engine

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/mwieler/bili-calculator/internal/config"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Named age windows a catalog rule may reference instead of literal hour
// bounds. The bounds are filled in from the engine config when the matcher
// is built, so the age splits follow the configured hours.
const (
	WindowBeforeDischargeAge = "before_discharge_age"
	WindowFromDischargeAge   = "from_discharge_age"
	WindowBeforeFollowUpAge  = "before_follow_up_age"
	WindowFromFollowUpAge    = "from_follow_up_age"
)

// Rule is one band of the follow-up guidance catalog. The gap band is
// lower-exclusive, upper-inclusive; the age window is lower-inclusive,
// upper-exclusive. A nil bound is unconstrained on that side. Rules are
// authored once and matched in catalog order, first match wins.
type Rule struct {
	// Gap bounds, in mg/dL below the phototherapy threshold.
	GapLowMgDL  *float64 `yaml:"gap_low" json:"gap_low,omitempty"`
	GapHighMgDL *float64 `yaml:"gap_high" json:"gap_high,omitempty"`

	// Age window, in hours of life.
	AgeLowHours  *int `yaml:"age_low" json:"age_low,omitempty"`
	AgeHighHours *int `yaml:"age_high" json:"age_high,omitempty"`

	// AgeWindow names a config-driven age window. Mutually exclusive with
	// explicit hour bounds; resolved into them when the matcher is built.
	AgeWindow string `yaml:"age_window" json:"age_window,omitempty"`

	Recommendation string `yaml:"recommendation" json:"recommendation"`
	Notes          string `yaml:"notes" json:"notes,omitempty"`
}

// Matches reports whether the gap and age fall inside this rule's band and
// window.
func (r Rule) Matches(gap, ageHours float64) bool {
	if r.GapLowMgDL != nil && gap <= *r.GapLowMgDL {
		return false
	}
	if r.GapHighMgDL != nil && gap > *r.GapHighMgDL {
		return false
	}
	if r.AgeLowHours != nil && ageHours < float64(*r.AgeLowHours) {
		return false
	}
	if r.AgeHighHours != nil && ageHours >= float64(*r.AgeHighHours) {
		return false
	}
	return true
}

// LoadCatalog parses the embedded guidance rule catalog.
func LoadCatalog() ([]Rule, error) {
	return parseCatalog(catalogYAML)
}

func parseCatalog(data []byte) ([]Rule, error) {
	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "engine: parse guidance catalog")
	}
	if len(doc.Rules) == 0 {
		return nil, eris.New("engine: guidance catalog is empty")
	}
	for i, r := range doc.Rules {
		if r.Recommendation == "" {
			return nil, eris.Errorf("engine: guidance catalog rule %d has no recommendation", i)
		}
		if r.AgeWindow != "" && (r.AgeLowHours != nil || r.AgeHighHours != nil) {
			return nil, eris.Errorf("engine: guidance catalog rule %d mixes age_window with explicit hour bounds", i)
		}
	}
	return doc.Rules, nil
}

// resolveAgeWindows fills each rule's hour bounds from its named window.
func resolveAgeWindows(cfg config.EngineConfig, rules []Rule) ([]Rule, error) {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		switch r.AgeWindow {
		case "":
		case WindowBeforeDischargeAge:
			h := cfg.DischargeWarningHours
			r.AgeHighHours = &h
		case WindowFromDischargeAge:
			h := cfg.DischargeWarningHours
			r.AgeLowHours = &h
		case WindowBeforeFollowUpAge:
			h := cfg.FollowUpAgeHours
			r.AgeHighHours = &h
		case WindowFromFollowUpAge:
			h := cfg.FollowUpAgeHours
			r.AgeLowHours = &h
		default:
			return nil, eris.Errorf("engine: guidance catalog rule %d names unknown age window %q", i, r.AgeWindow)
		}
		out[i] = r
	}
	return out, nil
}
