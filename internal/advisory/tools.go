package advisory

import (
	"fmt"

	"github.com/khamari/khamari-api/pkg/llm"
)

// recommendationTypes is the fixed advisory category enum the model must
// pick from.
var recommendationTypes = []string{
	"irrigation", "fertilizer", "disease_risk", "animal_health", "financial",
	"harvest", "weather_alert", "fish_temperature", "fish_feeding",
	"fish_growth", "fish_profit",
}

var taskTypes = []string{
	"irrigation", "fertilizer", "harvest", "feeding", "vaccination",
	"maintenance", "other",
}

var priorities = []string{"high", "medium", "low"}

// recommendationsTool forces structured recommendations out of the model.
func recommendationsTool() llm.Tool {
	return llm.Tool{
		Name:        "generate_recommendations",
		Description: "Generate prioritized farming recommendations for a Bangladeshi smallholder farm based on its current data.",
		InputSchema: map[string]any{
			"recommendations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type":           map[string]any{"type": "string", "enum": recommendationTypes},
						"title":          map[string]any{"type": "string", "description": "English title"},
						"title_bn":       map[string]any{"type": "string", "description": "Bengali title"},
						"description":    map[string]any{"type": "string"},
						"description_bn": map[string]any{"type": "string"},
						"explanation_en": map[string]any{"type": "string"},
						"explanation_bn": map[string]any{"type": "string"},
						"action_steps_bn": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"urgency":    map[string]any{"type": "string", "enum": []string{"জরুরি", "মাঝারি", "তথ্যমূলক"}},
						"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
						"priority":   map[string]any{"type": "string", "enum": priorities},
					},
					"required": []string{"type", "title", "title_bn", "description_bn", "urgency", "confidence", "priority"},
				},
			},
		},
		Required: []string{"recommendations"},
	}
}

// scheduleTool forces a structured task schedule out of the model.
func scheduleTool() llm.Tool {
	return llm.Tool{
		Name:        "generate_schedule",
		Description: "Generate a dated task schedule for the coming days based on the farm's current data.",
		InputSchema: map[string]any{
			"tasks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":       map[string]any{"type": "string"},
						"title_bn":    map[string]any{"type": "string"},
						"due_date":    map[string]any{"type": "string", "description": "ISO date YYYY-MM-DD"},
						"priority":    map[string]any{"type": "string", "enum": priorities},
						"task_type":   map[string]any{"type": "string", "enum": taskTypes},
						"description": map[string]any{"type": "string"},
					},
					"required": []string{"title", "title_bn", "due_date", "priority", "task_type"},
				},
			},
		},
		Required: []string{"tasks"},
	}
}

const advisorySystemPrompt = `You are an agricultural advisor for smallholder farmers in Bangladesh. ` +
	`You know local crops, livestock, aquaculture, seasons, and market conditions. ` +
	`Always write Bengali fields in natural, simple Bengali a farmer can follow.`

func recommendationsPrompt(contextText string) string {
	return fmt.Sprintf(`নিচে একটি খামারের বর্তমান তথ্য দেওয়া হলো। এই তথ্যের ভিত্তিতে generate_recommendations টুল ব্যবহার করে অগ্রাধিকার অনুযায়ী সুপারিশ তৈরি করুন। আবহাওয়া, ফসলের পর্যায়, পশুর স্বাস্থ্য এবং আর্থিক অবস্থা বিবেচনা করুন।

%s`, contextText)
}

func schedulePrompt(contextText string) string {
	return fmt.Sprintf(`নিচে একটি খামারের বর্তমান তথ্য দেওয়া হলো। আগামী ৭ দিনের জন্য generate_schedule টুল ব্যবহার করে করণীয় কাজের তালিকা তৈরি করুন। প্রতিটি কাজের তারিখ ও অগ্রাধিকার দিন।

%s`, contextText)
}

func financePrompt(contextText string) string {
	return fmt.Sprintf(`নিচে একটি খামারের বর্তমান তথ্য দেওয়া হলো। খামারটির আর্থিক অবস্থার একটি বিশ্লেষণ বাংলায় লিখুন: আয়-ব্যয়ের ধারা, লাভজনকতা, খরচ কমানোর সুযোগ এবং আয় বাড়ানোর পরামর্শ।

%s`, contextText)
}
