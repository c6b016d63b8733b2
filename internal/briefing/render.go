package briefing

import (
	"fmt"
	"strings"

	"github.com/khamari/khamari-api/internal/model"
)

const nonePlaceholder = "কোনো তথ্য নেই"

// Render produces the single Bengali text block summarizing a farm: one
// bullet per crop, herd, and pond, revenue/expense totals, and current
// weather. Empty collections render the explicit "none" placeholder so the
// model knows the data was fetched and absent, not omitted.
func Render(fc *FarmContext) string {
	var sb strings.Builder

	sb.WriteString("খামারের তথ্য:\n")
	sb.WriteString(fmt.Sprintf("নাম: %s, ধরন: %s, জেলা: %s", fc.Farm.Name, fc.Farm.Type, fc.Farm.District))
	if fc.Farm.Upazila != "" {
		sb.WriteString(fmt.Sprintf(", উপজেলা: %s", fc.Farm.Upazila))
	}
	sb.WriteString("\n")
	if fc.Profile != nil && fc.Profile.FullName != "" {
		sb.WriteString(fmt.Sprintf("খামারি: %s\n", fc.Profile.FullName))
	}

	sb.WriteString("\nফসল:\n")
	if len(fc.Crops) == 0 {
		sb.WriteString(nonePlaceholder + "\n")
	}
	for _, c := range fc.Crops {
		sb.WriteString(fmt.Sprintf("• %s", Canonical(c.Name)))
		if c.Variety != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", Canonical(c.Variety)))
		}
		if c.GrowthStage != "" {
			sb.WriteString(fmt.Sprintf(", পর্যায়: %s", c.GrowthStage))
		}
		if c.LandSize > 0 {
			sb.WriteString(fmt.Sprintf(", জমি: %.2f %s", c.LandSize, c.LandUnit))
		}
		if c.PlantingDate != nil {
			sb.WriteString(fmt.Sprintf(", রোপণ: %s", c.PlantingDate.Format("2006-01-02")))
		}
		if c.IrrigationDate != nil {
			sb.WriteString(fmt.Sprintf(", শেষ সেচ: %s", c.IrrigationDate.Format("2006-01-02")))
		}
		if c.FertilizerDate != nil {
			sb.WriteString(fmt.Sprintf(", শেষ সার: %s", c.FertilizerDate.Format("2006-01-02")))
		}
		if c.HealthStatus != "" {
			sb.WriteString(fmt.Sprintf(", অবস্থা: %s", c.HealthStatus))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nগবাদি পশু ও হাঁস-মুরগি:\n")
	if len(fc.Livestock) == 0 {
		sb.WriteString(nonePlaceholder + "\n")
	}
	for _, l := range fc.Livestock {
		sb.WriteString(fmt.Sprintf("• %s", Canonical(l.AnimalType)))
		if l.Breed != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", l.Breed))
		}
		sb.WriteString(fmt.Sprintf(", সংখ্যা: %d", l.Count))
		if l.DailyProduction > 0 {
			sb.WriteString(fmt.Sprintf(", দৈনিক উৎপাদন: %.1f %s", l.DailyProduction, l.ProductionUnit))
		}
		if l.FeedCost > 0 {
			sb.WriteString(fmt.Sprintf(", খাদ্য খরচ: %.0f টাকা", l.FeedCost))
		}
		if l.LastIllnessDate != nil {
			sb.WriteString(fmt.Sprintf(", শেষ অসুস্থতা: %s", l.LastIllnessDate.Format("2006-01-02")))
		}
		if len(l.Vaccinations) > 0 {
			sb.WriteString(fmt.Sprintf(", টিকা: %s", strings.Join(l.Vaccinations, ", ")))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nমাছের পুকুর:\n")
	if len(fc.Ponds) == 0 {
		sb.WriteString(nonePlaceholder + "\n")
	}
	for _, p := range fc.Ponds {
		sb.WriteString(fmt.Sprintf("• পুকুর %d", p.PondNumber))
		if p.Area > 0 {
			sb.WriteString(fmt.Sprintf(", আয়তন: %.2f শতাংশ", p.Area))
		}
		if len(p.Species) > 0 {
			names := make([]string, len(p.Species))
			for i, s := range p.Species {
				names[i] = Canonical(s)
			}
			sb.WriteString(fmt.Sprintf(", মাছ: %s", strings.Join(names, ", ")))
		}
		if p.FingerlingCount > 0 {
			sb.WriteString(fmt.Sprintf(", পোনা: %d টি", p.FingerlingCount))
		}
		if p.AverageWeight > 0 {
			sb.WriteString(fmt.Sprintf(", গড় ওজন: %.0f গ্রাম", p.AverageWeight))
		}
		if p.FeedAmount > 0 {
			sb.WriteString(fmt.Sprintf(", দৈনিক খাদ্য: %.1f কেজি", p.FeedAmount))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nআর্থিক অবস্থা:\n")
	if len(fc.Transactions) == 0 {
		sb.WriteString(nonePlaceholder + "\n")
	} else {
		var revenue, expense float64
		for _, t := range fc.Transactions {
			switch t.Type {
			case model.TransactionRevenue:
				revenue += t.Amount
			case model.TransactionExpense:
				expense += t.Amount
			}
		}
		sb.WriteString(fmt.Sprintf("সাম্প্রতিক %d লেনদেন: আয় %.0f টাকা, ব্যয় %.0f টাকা, নিট %.0f টাকা\n",
			len(fc.Transactions), revenue, expense, revenue-expense))
	}

	sb.WriteString("\nআবহাওয়া:\n")
	if fc.Weather == nil || fc.Weather.Current == nil {
		sb.WriteString("আবহাওয়ার তথ্য পাওয়া যায়নি\n")
	} else {
		cur := fc.Weather.Current
		sb.WriteString(fmt.Sprintf("%s: তাপমাত্রা %.1f°C, আর্দ্রতা %.0f%%, বাতাস %.0f কিমি/ঘণ্টা, %s\n",
			fc.Weather.Location.Name, cur.Temperature, cur.Humidity, cur.WindKmh, cur.Description))
		for _, d := range fc.Weather.Forecast {
			sb.WriteString(fmt.Sprintf("• %s: %.0f-%.0f°C, %s\n", d.Date, d.TempMin, d.TempMax, d.Condition))
		}
	}

	return sb.String()
}
