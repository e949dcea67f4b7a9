package widgets

import (
	"strings"
	"time"
)

// Activity is one task, event or email logged against an account.
type Activity struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Subject      string `json:"subject"`
	Priority     string `json:"priority"`
	ActivityDate string `json:"activityDate"`
	Description  string `json:"description"`
}

type TimelineItem struct {
	Activity
	IsTask         bool
	IsEvent        bool
	IsEmail        bool
	IsHighPriority bool
	FormattedDate  string
	DetailsID      string
}

func ProcessActivities(in []Activity) []TimelineItem {
	out := make([]TimelineItem, 0, len(in))
	for _, a := range in {
		out = append(out, TimelineItem{
			Activity:       a,
			IsTask:         a.Type == "task",
			IsEvent:        a.Type == "event",
			IsEmail:        a.Type == "email",
			IsHighPriority: a.Priority == "High",
			FormattedDate:  FormatActivityDate(a.ActivityDate),
			DetailsID:      "activity-details-" + a.ID,
		})
	}
	return out
}

// FormatActivityDate renders a date as "Jan 2, 2006". Empty input gives "",
// anything unparseable gives "Invalid Date".
func FormatActivityDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return "Invalid Date"
}
