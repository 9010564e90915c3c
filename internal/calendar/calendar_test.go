package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlansParse(t *testing.T) {
	_, err := load()
	require.NoError(t, err)
	assert.Equal(t, []string{"rice", "tomato", "wheat"}, Crops())
}

func TestEveryWeekHasOnePhase(t *testing.T) {
	for _, id := range Crops() {
		p, ok := Lookup(id)
		require.True(t, ok)
		assert.Equal(t, id, p.CropID)

		for week := 1; week <= p.TotalWeeks; week++ {
			count := 0
			for _, ph := range p.Phases {
				for _, w := range ph.Weeks {
					if w == week {
						count++
					}
				}
			}
			assert.Equal(t, 1, count, "%s week %d", id, week)
			assert.NotEmpty(t, p.TasksFor(week), "%s week %d", id, week)
		}
	}
}

func TestTomatoPlan(t *testing.T) {
	p, ok := Lookup("tomato")
	require.True(t, ok)
	assert.Equal(t, 16, p.TotalWeeks)

	tests := []struct {
		week  int
		phase string
		color string
	}{
		{1, "Seed Preparation", "#8B5CF6"},
		{4, "Sowing", "#22C55E"},
		{6, "Germination", "#3B82F6"},
		{9, "Vegetative Growth", "#F59E0B"},
		{11, "Flowering", "#EC4899"},
		{14, "Fruit Development", "#EF4444"},
		{16, "Harvest", "#10B981"},
	}
	for _, tt := range tests {
		ph, ok := p.PhaseAt(tt.week)
		require.True(t, ok, tt.week)
		assert.Equal(t, tt.phase, ph.Name)
		assert.Equal(t, tt.color, ph.Color)
	}

	assert.Equal(t, []string{"Prepare seedbed", "Select quality seeds", "Check soil pH"}, p.TasksFor(1))
	assert.Equal(t, []string{"Complete harvest", "Prepare for next crop"}, p.TasksFor(16))
	assert.Nil(t, p.TasksFor(17))

	_, ok = p.PhaseAt(0)
	assert.False(t, ok)
}

func TestClampWeek(t *testing.T) {
	p, _ := Lookup("tomato")
	assert.Equal(t, 1, p.ClampWeek(0))
	assert.Equal(t, 7, p.ClampWeek(7))
	assert.Equal(t, 16, p.ClampWeek(40))
}

func TestRecommendation(t *testing.T) {
	flowering := Phase{Name: PhaseFlowering}
	fruiting := Phase{Name: PhaseFruitDevelopment}

	assert.Equal(t, AdviceRainDuringFlowering, Recommendation(Weather{RainfallMM: 21}, flowering))
	assert.Equal(t, AdviceFavourable, Recommendation(Weather{RainfallMM: 20}, flowering))
	assert.Equal(t, AdviceHeatDuringFruiting, Recommendation(Weather{TemperatureC: 36}, fruiting))
	assert.Equal(t, AdviceFavourable, Recommendation(Weather{TemperatureC: 36, RainfallMM: 30}, Phase{Name: "Harvest"}))
	assert.Equal(t, AdviceFavourable, Recommendation(CurrentWeather(), flowering))
}

func TestCropFor(t *testing.T) {
	assert.Equal(t, "tomato", CropFor(nil))
	assert.Equal(t, "onion", CropFor([]string{"onion", "rice"}))

	_, ok := Lookup("onion")
	assert.False(t, ok)
}
