package model

import "time"

// AlertSeverity ranks a user-facing alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert is a persisted, user-visible notification. It is derived either from
// deterministic weather thresholds or from urgent AI recommendations.
//
// Write-time invariant: at most N alerts sharing the same title per (user,
// farm, calendar day), with N configurable (default 2); exact (title, message)
// duplicates for the day are skipped entirely. Equality is string equality.
type Alert struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	FarmID    string        `json:"farm_id"`
	Type      string        `json:"type"`
	Severity  AlertSeverity `json:"severity"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Read      bool          `json:"read"`
	CreatedAt time.Time     `json:"created_at"`
}

// Urgency is the Bengali urgency enum attached to recommendations.
type Urgency string

const (
	UrgencyUrgent        Urgency = "জরুরি"
	UrgencyModerate      Urgency = "মাঝারি"
	UrgencyInformational Urgency = "তথ্যমূলক"
)

// Priority ranks recommendations and tasks.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// RecommendationType is the fixed enum of advisory categories.
type RecommendationType string

const (
	RecIrrigation      RecommendationType = "irrigation"
	RecFertilizer      RecommendationType = "fertilizer"
	RecDiseaseRisk     RecommendationType = "disease_risk"
	RecAnimalHealth    RecommendationType = "animal_health"
	RecFinancial       RecommendationType = "financial"
	RecHarvest         RecommendationType = "harvest"
	RecWeatherAlert    RecommendationType = "weather_alert"
	RecFishTemperature RecommendationType = "fish_temperature"
	RecFishFeeding     RecommendationType = "fish_feeding"
	RecFishGrowth      RecommendationType = "fish_growth"
	RecFishProfit      RecommendationType = "fish_profit"
)

// Recommendation is one structured advisory item produced by the model.
type Recommendation struct {
	Type          RecommendationType `json:"type"`
	Title         string             `json:"title"`
	TitleBn       string             `json:"title_bn"`
	Description   string             `json:"description"`
	DescriptionBn string             `json:"description_bn"`
	ExplanationEn string             `json:"explanation_en,omitempty"`
	ExplanationBn string             `json:"explanation_bn,omitempty"`
	ActionStepsBn []string           `json:"action_steps_bn,omitempty"`
	Urgency       Urgency            `json:"urgency"`
	Confidence    float64            `json:"confidence"`
	Priority      Priority           `json:"priority"`
}

// Explanation returns the English explanation, falling back to Bengali when
// the model omitted it.
func (r Recommendation) Explanation() string {
	if r.ExplanationEn != "" {
		return r.ExplanationEn
	}
	return r.ExplanationBn
}

// TaskSource distinguishes user-authored tasks from AI-generated ones.
type TaskSource string

const (
	TaskSourceAI     TaskSource = "ai"
	TaskSourceManual TaskSource = "manual"
)

// TaskType is the schedule task category enum.
type TaskType string

const (
	TaskIrrigation  TaskType = "irrigation"
	TaskFertilizer  TaskType = "fertilizer"
	TaskHarvest     TaskType = "harvest"
	TaskFeeding     TaskType = "feeding"
	TaskVaccination TaskType = "vaccination"
	TaskMaintenance TaskType = "maintenance"
	TaskOther       TaskType = "other"
)

// FarmTask is a persisted to-do item. AI-generated tasks are inserted in bulk
// with no deduplication against existing rows; repeated schedule generations
// accumulate duplicates.
type FarmTask struct {
	ID          string     `json:"id"`
	FarmID      string     `json:"farm_id"`
	Title       string     `json:"title"`
	TitleBn     string     `json:"title_bn,omitempty"`
	DueDate     time.Time  `json:"due_date"`
	Priority    Priority   `json:"priority"`
	TaskType    TaskType   `json:"task_type"`
	Description string     `json:"description,omitempty"`
	Source      TaskSource `json:"source"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AIReport is the audit record written once per recommendations invocation.
// It is write-only from the pipeline's perspective.
type AIReport struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	FarmID          string    `json:"farm_id"`
	Recommendations string    `json:"recommendations"`
	TopUrgency      Urgency   `json:"top_urgency"`
	TopConfidence   float64   `json:"top_confidence"`
	CreatedAt       time.Time `json:"created_at"`
}

// WeatherLog caches the fetched conditions for a farm, at most one row per
// farm per rolling hour.
type WeatherLog struct {
	ID          string    `json:"id"`
	FarmID      string    `json:"farm_id"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	WindKmh     float64   `json:"wind_kmh"`
	Condition   string    `json:"condition"`
	CreatedAt   time.Time `json:"created_at"`
}
