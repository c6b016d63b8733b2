package weather

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Centroid is a district's representative coordinate pair.
type Centroid struct {
	Lat float64
	Lon float64
}

// districtCentroids maps all 64 Bangladeshi districts (Bengali names) to
// their centroids. An exact match here short-circuits geocoding.
var districtCentroids = map[string]Centroid{
	// ঢাকা বিভাগ
	"ঢাকা":       {23.8103, 90.4125},
	"ফরিদপুর":    {23.6070, 89.8429},
	"গাজীপুর":    {23.9999, 90.4203},
	"গোপালগঞ্জ":  {23.0050, 89.8266},
	"কিশোরগঞ্জ":  {24.4449, 90.7766},
	"মাদারীপুর":  {23.1641, 90.1897},
	"মানিকগঞ্জ":  {23.8617, 90.0003},
	"মুন্সিগঞ্জ": {23.5422, 90.5305},
	"নারায়ণগঞ্জ": {23.6238, 90.5000},
	"নরসিংদী":    {23.9322, 90.7151},
	"রাজবাড়ী":    {23.7574, 89.6445},
	"শরীয়তপুর":   {23.2423, 90.4348},
	"টাঙ্গাইল":   {24.2513, 89.9167},

	// ময়মনসিংহ বিভাগ
	"ময়মনসিংহ": {24.7471, 90.4203},
	"জামালপুর":  {24.9375, 89.9373},
	"নেত্রকোনা": {24.8709, 90.7279},
	"শেরপুর":    {25.0204, 90.0152},

	// চট্টগ্রাম বিভাগ
	"চট্টগ্রাম":       {22.3569, 91.7832},
	"বান্দরবান":       {22.1953, 92.2184},
	"ব্রাহ্মণবাড়িয়া": {23.9571, 91.1119},
	"চাঁদপুর":         {23.2332, 90.6712},
	"কুমিল্লা":        {23.4607, 91.1809},
	"কক্সবাজার":       {21.4272, 92.0058},
	"ফেনী":            {23.0159, 91.3976},
	"খাগড়াছড়ি":      {23.1193, 91.9847},
	"লক্ষ্মীপুর":      {22.9447, 90.8282},
	"নোয়াখালী":       {22.8696, 91.0990},
	"রাঙ্গামাটি":      {22.7324, 92.2985},

	// খুলনা বিভাগ
	"খুলনা":      {22.8456, 89.5403},
	"বাগেরহাট":   {22.6602, 89.7895},
	"চুয়াডাঙ্গা": {23.6402, 88.8410},
	"যশোর":       {23.1667, 89.2089},
	"ঝিনাইদহ":    {23.5450, 89.1539},
	"কুষ্টিয়া":   {23.9013, 89.1205},
	"মাগুরা":     {23.4873, 89.4199},
	"মেহেরপুর":   {23.7622, 88.6318},
	"নড়াইল":      {23.1163, 89.5840},
	"সাতক্ষীরা":  {22.7185, 89.0705},

	// রাজশাহী বিভাগ
	"রাজশাহী":        {24.3745, 88.6042},
	"বগুড়া":          {24.8465, 89.3776},
	"চাঁপাইনবাবগঞ্জ": {24.5965, 88.2776},
	"জয়পুরহাট":      {25.0968, 89.0227},
	"নওগাঁ":          {24.7936, 88.9318},
	"নাটোর":          {24.4206, 89.0003},
	"পাবনা":          {24.0064, 89.2372},
	"সিরাজগঞ্জ":      {24.4534, 89.7007},

	// রংপুর বিভাগ
	"রংপুর":       {25.7439, 89.2752},
	"দিনাজপুর":    {25.6217, 88.6354},
	"গাইবান্ধা":   {25.3288, 89.5280},
	"কুড়িগ্রাম":  {25.8054, 89.6362},
	"লালমনিরহাট":  {25.9923, 89.2847},
	"নীলফামারী":   {25.9318, 88.8560},
	"পঞ্চগড়":     {26.3411, 88.5542},
	"ঠাকুরগাঁও":   {26.0337, 88.4616},

	// সিলেট বিভাগ
	"সিলেট":        {24.8949, 91.8687},
	"হবিগঞ্জ":      {24.3745, 91.4155},
	"মৌলভীবাজার":   {24.4829, 91.7774},
	"সুনামগঞ্জ":    {25.0658, 91.3950},

	// বরিশাল বিভাগ
	"বরিশাল":     {22.7010, 90.3535},
	"বরগুনা":     {22.0953, 90.1121},
	"ভোলা":       {22.6859, 90.6482},
	"ঝালকাঠি":    {22.6406, 90.1987},
	"পটুয়াখালী": {22.3596, 90.3298},
	"পিরোজপুর":   {22.5841, 89.9720},
}

// CanonicalText trims and NFC-normalizes free-text input. Bengali input
// arrives in mixed normalization forms depending on the client keyboard,
// so the table lookup would miss without this.
func CanonicalText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// DistrictCentroid looks up a district by its Bengali name. The input is
// canonicalized before the lookup.
func DistrictCentroid(district string) (Centroid, bool) {
	c, ok := districtCentroids[CanonicalText(district)]
	return c, ok
}
