package store

import "github.com/khamari/khamari-api/internal/model"

// FilterNewAlerts applies the alert write policy against the rows already
// created today: exact (title, message) duplicates are dropped, and at most
// titleCap alerts may share a title per day, counting existing rows.
// Candidates are considered in order and also count against each other.
// Equality is plain string equality on the stored values.
func FilterNewAlerts(existing, candidates []model.Alert, titleCap int) []model.Alert {
	if titleCap <= 0 {
		titleCap = 2
	}

	titleCount := make(map[string]int, len(existing))
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		titleCount[a.Title]++
		seen[a.Title+"\x00"+a.Message] = true
	}

	var out []model.Alert
	for _, c := range candidates {
		key := c.Title + "\x00" + c.Message
		if seen[key] {
			continue
		}
		if titleCount[c.Title] >= titleCap {
			continue
		}
		seen[key] = true
		titleCount[c.Title]++
		out = append(out, c)
	}
	return out
}
