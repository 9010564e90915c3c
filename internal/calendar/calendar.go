// Package calendar holds per-crop growing plans: phases by week, weekly
// tasks, and simple weather advice for the current phase.
package calendar

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultCrop is shown when the farmer has not selected any crop.
const DefaultCrop = "tomato"

// Phase names referenced by the weather rules.
const (
	PhaseFlowering        = "Flowering"
	PhaseFruitDevelopment = "Fruit Development"
)

// Weather advice texts.
const (
	AdviceRainDuringFlowering = "High rainfall may affect pollination. Consider protective measures."
	AdviceHeatDuringFruiting  = "High temperature may cause fruit cracking. Increase irrigation."
	AdviceFavourable          = "Weather conditions are favorable for current growth phase."
)

// Phase is a stretch of weeks with one growth stage.
type Phase struct {
	Name  string `yaml:"name"`
	Weeks []int  `yaml:"weeks"`
	Color string `yaml:"color"`
}

// Plan is the calendar of one crop.
type Plan struct {
	CropID     string           `yaml:"-"`
	TotalWeeks int              `yaml:"total_weeks"`
	Phases     []Phase          `yaml:"phases"`
	Tasks      map[int][]string `yaml:"tasks"`
}

// PhaseAt returns the phase containing week.
func (p *Plan) PhaseAt(week int) (Phase, bool) {
	for _, ph := range p.Phases {
		if slices.Contains(ph.Weeks, week) {
			return ph, true
		}
	}
	return Phase{}, false
}

// TasksFor returns the tasks of week, or nil.
func (p *Plan) TasksFor(week int) []string {
	return p.Tasks[week]
}

// ClampWeek keeps week within 1..TotalWeeks.
func (p *Plan) ClampWeek(week int) int {
	return max(1, min(week, p.TotalWeeks))
}

// Weather is the current local weather.
type Weather struct {
	TemperatureC int
	HumidityPct  int
	RainfallMM   int
	Condition    string
}

// CurrentWeather returns the weather shown on the calendar screen. There is
// no weather feed; the values are fixed.
func CurrentWeather() Weather {
	return Weather{TemperatureC: 28, HumidityPct: 65, RainfallMM: 12, Condition: "Partly Cloudy"}
}

// Recommendation advises on the weather for the given phase.
func Recommendation(w Weather, phase Phase) string {
	switch {
	case w.RainfallMM > 20 && phase.Name == PhaseFlowering:
		return AdviceRainDuringFlowering
	case w.TemperatureC > 35 && phase.Name == PhaseFruitDevelopment:
		return AdviceHeatDuringFruiting
	default:
		return AdviceFavourable
	}
}

//go:embed plans.yaml
var plansYAML []byte

var (
	plans     map[string]*Plan
	plansErr  error
	plansOnce sync.Once
)

func load() (map[string]*Plan, error) {
	plansOnce.Do(func() {
		var raw map[string]*Plan
		if err := yaml.Unmarshal(plansYAML, &raw); err != nil {
			plansErr = fmt.Errorf("failed to parse crop plans: %w", err)
			return
		}
		for id, p := range raw {
			p.CropID = id
		}
		plans = raw
	})
	return plans, plansErr
}

// Lookup returns the plan for cropID.
func Lookup(cropID string) (*Plan, bool) {
	all, err := load()
	if err != nil {
		return nil, false
	}
	p, ok := all[cropID]
	return p, ok
}

// Crops lists the crops that have a plan, sorted.
func Crops() []string {
	all, _ := load()
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CropFor picks the crop to show: the first selected crop, else tomato.
func CropFor(selected []string) string {
	if len(selected) > 0 {
		return selected[0]
	}
	return DefaultCrop
}
