package model

import "time"

// Farm is the top-level owned unit. The application auto-creates exactly one
// active farm per user on first login, so every farm-scoped query carries the
// owner's user id alongside the farm id.
type Farm struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	District  string    `json:"district"`
	Upazila   string    `json:"upazila"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile holds the user-level data shown in the advisory context.
type Profile struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	District string `json:"district,omitempty"`
	Upazila  string `json:"upazila,omitempty"`
}

// Crop belongs to a farm. Names are free text and may arrive in Bengali,
// English, or transliterated spellings; the briefing layer normalizes them
// before rendering.
type Crop struct {
	ID             string     `json:"id"`
	FarmID         string     `json:"farm_id"`
	Name           string     `json:"name"`
	Variety        string     `json:"variety,omitempty"`
	GrowthStage    string     `json:"growth_stage,omitempty"`
	LandSize       float64    `json:"land_size,omitempty"`
	LandUnit       string     `json:"land_unit,omitempty"`
	PlantingDate   *time.Time `json:"planting_date,omitempty"`
	HarvestDate    *time.Time `json:"harvest_date,omitempty"`
	IrrigationDate *time.Time `json:"irrigation_date,omitempty"`
	FertilizerDate *time.Time `json:"fertilizer_date,omitempty"`
	SoilType       string     `json:"soil_type,omitempty"`
	HealthStatus   string     `json:"health_status,omitempty"`
}

// Livestock belongs to a farm.
type Livestock struct {
	ID              string     `json:"id"`
	FarmID          string     `json:"farm_id"`
	AnimalType      string     `json:"animal_type"`
	Breed           string     `json:"breed,omitempty"`
	Count           int        `json:"count"`
	AgeGroup        string     `json:"age_group,omitempty"`
	FeedCost        float64    `json:"feed_cost,omitempty"`
	MedicineCost    float64    `json:"medicine_cost,omitempty"`
	DailyProduction float64    `json:"daily_production,omitempty"`
	ProductionUnit  string     `json:"production_unit,omitempty"`
	LastIllnessDate *time.Time `json:"last_illness_date,omitempty"`
	Vaccinations    []string   `json:"vaccinations,omitempty"`
}

// FishPond belongs to a farm.
type FishPond struct {
	ID               string     `json:"id"`
	FarmID           string     `json:"farm_id"`
	PondNumber       int        `json:"pond_number"`
	Area             float64    `json:"area,omitempty"`
	Depth            float64    `json:"depth,omitempty"`
	WaterSource      string     `json:"water_source,omitempty"`
	Species          []string   `json:"species,omitempty"`
	FingerlingCount  int        `json:"fingerling_count,omitempty"`
	FingerlingCost   float64    `json:"fingerling_cost,omitempty"`
	FeedAmount       float64    `json:"feed_amount,omitempty"`
	FeedCost         float64    `json:"feed_cost,omitempty"`
	AverageWeight    float64    `json:"average_weight,omitempty"`
	ExpectedSaleDate *time.Time `json:"expected_sale_date,omitempty"`
}

// TransactionType classifies a finance transaction.
type TransactionType string

const (
	TransactionRevenue TransactionType = "revenue"
	TransactionExpense TransactionType = "expense"
)

// FinanceTransaction belongs to a farm. The advisory pipeline reads the most
// recent 50 by date descending.
type FinanceTransaction struct {
	ID          string          `json:"id"`
	FarmID      string          `json:"farm_id"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category,omitempty"`
	Amount      float64         `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
}
