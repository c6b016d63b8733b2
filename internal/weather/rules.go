package weather

import (
	"fmt"

	"github.com/khamari/khamari-api/internal/model"
)

// Alert thresholds. All comparisons are strict: humidity of exactly 85 or a
// temperature of exactly 38 does not fire.
const (
	humidityDiseaseThreshold = 85.0
	tempHeatThreshold        = 38.0
	windStormThresholdKmh    = 40.0
	rainDaysThreshold        = 3
	tempColdThreshold        = 10.0
	humidityDryThreshold     = 50.0
)

// isRainDay reports whether a forecast day counts toward the prolonged-rain
// rule.
func isRainDay(d ForecastDay) bool {
	return d.Condition == "Rain" || d.Condition == "Thunderstorm"
}

// RuleAlerts derives deterministic alerts from current conditions and the
// reduced forecast. Rules are independent; any subset may fire at once. The
// returned alerts carry no user or farm ids; the caller fills those in
// before persisting.
func RuleAlerts(cur *Conditions, forecast []ForecastDay) []model.Alert {
	var alerts []model.Alert

	if cur.Humidity > humidityDiseaseThreshold {
		alerts = append(alerts, model.Alert{
			Type:     "disease_risk",
			Severity: model.SeverityHigh,
			Title:    "রোগের ঝুঁকি",
			Message:  fmt.Sprintf("আর্দ্রতা %.0f%%। ছত্রাকজনিত রোগের ঝুঁকি বেশি, ফসল নিয়মিত পর্যবেক্ষণ করুন।", cur.Humidity),
		})
	}

	if cur.Temperature > tempHeatThreshold {
		alerts = append(alerts, model.Alert{
			Type:     "heat",
			Severity: model.SeverityHigh,
			Title:    "তীব্র তাপপ্রবাহ",
			Message:  fmt.Sprintf("তাপমাত্রা %.1f°C। গবাদি পশুকে ছায়ায় রাখুন এবং পর্যাপ্ত পানি দিন।", cur.Temperature),
		})
	}

	if cur.WindKmh > windStormThresholdKmh {
		alerts = append(alerts, model.Alert{
			Type:     "storm",
			Severity: model.SeverityMedium,
			Title:    "ঝড়ের সতর্কতা",
			Message:  fmt.Sprintf("বাতাসের গতি %.0f কিমি/ঘণ্টা। হালকা কাঠামো ও চারা রক্ষা করুন।", cur.WindKmh),
		})
	}

	rainDays := 0
	for _, d := range forecast {
		if isRainDay(d) {
			rainDays++
		}
	}

	if rainDays >= rainDaysThreshold {
		alerts = append(alerts, model.Alert{
			Type:     "prolonged_rain",
			Severity: model.SeverityMedium,
			Title:    "টানা বৃষ্টির পূর্বাভাস",
			Message:  fmt.Sprintf("আগামী %d দিনের মধ্যে %d দিন বৃষ্টির সম্ভাবনা। নিষ্কাশনের ব্যবস্থা ঠিক রাখুন।", len(forecast), rainDays),
		})
	}

	if cur.Temperature < tempColdThreshold {
		alerts = append(alerts, model.Alert{
			Type:     "cold",
			Severity: model.SeverityMedium,
			Title:    "শৈত্যপ্রবাহ",
			Message:  fmt.Sprintf("তাপমাত্রা %.1f°C। বীজতলা ঢেকে রাখুন এবং পশুদের উষ্ণ রাখুন।", cur.Temperature),
		})
	}

	if rainDays == 0 && cur.Humidity < humidityDryThreshold {
		alerts = append(alerts, model.Alert{
			Type:     "irrigation",
			Severity: model.SeverityLow,
			Title:    "সেচের পরামর্শ",
			Message:  "শুষ্ক আবহাওয়া চলছে এবং বৃষ্টির সম্ভাবনা নেই। ফসলে সেচ দেওয়ার কথা বিবেচনা করুন।",
		})
	}

	return alerts
}
