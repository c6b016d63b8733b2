package advisory

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/khamari/khamari-api/internal/model"
)

// extractArray pulls the named array field out of a tool-call payload. The
// payload is normally a JSON object, but some responses arrive as a JSON
// string wrapping the object; both are accepted.
func extractArray(raw json.RawMessage, field string) (json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		raw = json.RawMessage(wrapped)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	arr, ok := obj[field]
	return arr, ok
}

// ParseRecommendations decodes a generate_recommendations payload. Any
// failure degrades to an empty slice; the pipeline reports "no
// recommendations" instead of failing the request.
func ParseRecommendations(raw json.RawMessage) []model.Recommendation {
	arr, ok := extractArray(raw, "recommendations")
	if !ok {
		zap.L().Warn("recommendations payload missing or malformed, degrading to empty")
		return nil
	}
	var recs []model.Recommendation
	if err := json.Unmarshal(arr, &recs); err != nil {
		zap.L().Warn("recommendations array failed to decode, degrading to empty", zap.Error(err))
		return nil
	}
	return recs
}

// taskPayload matches the generate_schedule item shape before date parsing.
type taskPayload struct {
	Title       string `json:"title"`
	TitleBn     string `json:"title_bn"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	TaskType    string `json:"task_type"`
	Description string `json:"description"`
}

// ParseTasks decodes a generate_schedule payload into FarmTask rows for the
// given farm. Entries with unparseable dates are dropped with a log line;
// a malformed payload degrades to an empty slice.
func ParseTasks(raw json.RawMessage, farmID string) []model.FarmTask {
	arr, ok := extractArray(raw, "tasks")
	if !ok {
		zap.L().Warn("schedule payload missing or malformed, degrading to empty")
		return nil
	}
	var payloads []taskPayload
	if err := json.Unmarshal(arr, &payloads); err != nil {
		zap.L().Warn("task array failed to decode, degrading to empty", zap.Error(err))
		return nil
	}

	tasks := make([]model.FarmTask, 0, len(payloads))
	for _, p := range payloads {
		due, err := parseDueDate(p.DueDate)
		if err != nil {
			zap.L().Warn("dropping task with unparseable due date",
				zap.String("title", p.Title),
				zap.String("due_date", p.DueDate),
			)
			continue
		}
		tasks = append(tasks, model.FarmTask{
			FarmID:      farmID,
			Title:       p.Title,
			TitleBn:     p.TitleBn,
			DueDate:     due,
			Priority:    model.Priority(p.Priority),
			TaskType:    model.TaskType(p.TaskType),
			Description: p.Description,
			Source:      model.TaskSourceAI,
		})
	}
	return tasks
}

func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
