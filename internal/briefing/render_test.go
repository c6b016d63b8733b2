package briefing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khamari/khamari-api/internal/model"
	"github.com/khamari/khamari-api/internal/weather"
)

func TestCanonical(t *testing.T) {
	assert.Equal(t, "ধান", Canonical("rice"))
	assert.Equal(t, "ধান", Canonical("  Rice "))
	assert.Equal(t, "ধান", Canonical("dhan"))
	assert.Equal(t, "ইউরিয়া", Canonical("urea"))
	assert.Equal(t, "গরু", Canonical("GORU"))
	assert.Equal(t, "ধান", Canonical("ধান"), "Bengali input passes through")
	assert.Equal(t, "dragon fruit", Canonical("dragon fruit"), "unknown names pass through")
}

func TestRender_EmptyCollectionsUsePlaceholder(t *testing.T) {
	fc := &FarmContext{
		Farm: &model.Farm{Name: "আমার খামার", Type: "crop", District: "ঢাকা"},
	}
	text := Render(fc)

	assert.Equal(t, 4, strings.Count(text, nonePlaceholder),
		"crops, livestock, ponds, and finances all render the placeholder")
	assert.Contains(t, text, "আবহাওয়ার তথ্য পাওয়া যায়নি")
}

func TestRender_NormalizesNamesAndTotals(t *testing.T) {
	fc := &FarmContext{
		Farm:  &model.Farm{Name: "খামার", Type: "mixed", District: "রাজশাহী", Upazila: "পবা"},
		Crops: []model.Crop{{Name: "rice", Variety: "BRRI-29", GrowthStage: "চারা"}},
		Livestock: []model.Livestock{
			{AnimalType: "cow", Count: 3, DailyProduction: 12, ProductionUnit: "লিটার"},
		},
		Ponds: []model.FishPond{{PondNumber: 1, Species: []string{"tilapia", "rui"}}},
		Transactions: []model.FinanceTransaction{
			{Type: model.TransactionRevenue, Amount: 5000},
			{Type: model.TransactionExpense, Amount: 1200},
			{Type: model.TransactionExpense, Amount: 800},
		},
		Weather: &weather.Result{
			Location: weather.Location{Name: "রাজশাহী"},
			Current:  &weather.Conditions{Temperature: 31.5, Humidity: 70, WindKmh: 9},
			Forecast: []weather.ForecastDay{{Date: "2026-06-01", TempMin: 26, TempMax: 33, Condition: "Clouds"}},
		},
	}
	text := Render(fc)

	assert.Contains(t, text, "• ধান (BRRI-29)")
	assert.Contains(t, text, "• গরু")
	assert.Contains(t, text, "তেলাপিয়া, রুই")
	assert.Contains(t, text, "আয় 5000 টাকা, ব্যয় 2000 টাকা, নিট 3000 টাকা")
	assert.Contains(t, text, "উপজেলা: পবা")
	assert.Contains(t, text, "2026-06-01")
	assert.NotContains(t, text, nonePlaceholder)
}
