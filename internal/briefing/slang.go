package briefing

import "strings"

// slangToBengali maps common Latin-script and phonetic spellings of crop,
// input, and animal names to their canonical Bengali form. Farmers type
// these interchangeably; the model prompt should see one spelling. This is
// a fixed lookup, nothing is inferred.
var slangToBengali = map[string]string{
	// crops
	"rice":     "ধান",
	"paddy":    "ধান",
	"dhan":     "ধান",
	"wheat":    "গম",
	"gom":      "গম",
	"jute":     "পাট",
	"pat":      "পাট",
	"potato":   "আলু",
	"alu":      "আলু",
	"onion":    "পেঁয়াজ",
	"corn":     "ভুট্টা",
	"maize":    "ভুট্টা",
	"tomato":   "টমেটো",
	"brinjal":  "বেগুন",
	"eggplant": "বেগুন",
	"begun":    "বেগুন",
	"mustard":  "সরিষা",
	"lentil":   "মসুর ডাল",
	"mango":    "আম",
	"banana":   "কলা",
	"guava":    "পেয়ারা",

	// fertilizers
	"urea":   "ইউরিয়া",
	"tsp":    "টিএসপি",
	"dap":    "ডিএপি",
	"mop":    "এমওপি",
	"potash": "পটাশ",

	// livestock
	"cow":     "গরু",
	"goru":    "গরু",
	"goat":    "ছাগল",
	"chagol":  "ছাগল",
	"chicken": "মুরগি",
	"hen":     "মুরগি",
	"murgi":   "মুরগি",
	"duck":    "হাঁস",
	"buffalo": "মহিষ",

	// fish
	"fish":    "মাছ",
	"rui":     "রুই",
	"katla":   "কাতলা",
	"catla":   "কাতলা",
	"tilapia": "তেলাপিয়া",
	"pangas":  "পাঙ্গাস",
	"pangash": "পাঙ্গাস",
	"shing":   "শিং",
	"koi":     "কৈ",
}

// Canonical returns the Bengali form of a name when a slang or
// transliterated spelling is recognized, otherwise the input unchanged.
func Canonical(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if bn, ok := slangToBengali[key]; ok {
		return bn
	}
	return name
}
