package model

import "time"

// RiskLevel grades an image diagnosis.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Diagnosis is the structured result of an image diagnosis call.
type Diagnosis struct {
	Condition   string    `json:"condition"`
	ConditionBn string    `json:"condition_bn,omitempty"`
	RiskLevel   RiskLevel `json:"risk_level"`
	AdviceBn    []string  `json:"advice_bn,omitempty"`
	Confidence  float64   `json:"confidence"`
}

// ImageRecord persists one diagnosed image.
type ImageRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FarmID      string    `json:"farm_id"`
	Kind        string    `json:"kind"` // "crop" or "livestock"
	StoragePath string    `json:"storage_path"`
	Diagnosis   Diagnosis `json:"diagnosis"`
	CreatedAt   time.Time `json:"created_at"`
}

// MarketPrice is one generated market price entry, retained for 7 days.
type MarketPrice struct {
	ID        string    `json:"id"`
	Item      string    `json:"item"`
	ItemBn    string    `json:"item_bn,omitempty"`
	Unit      string    `json:"unit"`
	MinPrice  float64   `json:"min_price"`
	MaxPrice  float64   `json:"max_price"`
	Market    string    `json:"market,omitempty"`
	PriceDate time.Time `json:"price_date"`
	CreatedAt time.Time `json:"created_at"`
}

// HarvestRecord is a caller-supplied input to production analysis.
type HarvestRecord struct {
	Crop      string    `json:"crop"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit,omitempty"`
	Revenue   float64   `json:"revenue,omitempty"`
	Harvested time.Time `json:"harvested,omitempty"`
}

// LivestockLog is a caller-supplied input to production analysis.
type LivestockLog struct {
	AnimalType string    `json:"animal_type"`
	Production float64   `json:"production"`
	Unit       string    `json:"unit,omitempty"`
	Cost       float64   `json:"cost,omitempty"`
	LoggedAt   time.Time `json:"logged_at,omitempty"`
}

// OTP is one emailed one-time passcode. Codes expire 10 minutes after
// creation; sends are limited to 3 per email per 60 seconds.
type OTP struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}
