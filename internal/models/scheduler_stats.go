package models

// Stats is a pure aggregate over whatever collection it was computed from.
// byStatus/byType/byPriority always carry every enum key.
type Stats struct {
	Total          int                `json:"total"`
	ByStatus       map[ItemStatus]int `json:"by_status"`
	ByType         map[ItemType]int   `json:"by_type"`
	ByPriority     map[Priority]int   `json:"by_priority"`
	Overdue        int                `json:"overdue"`
	DueToday       int                `json:"due_today"`
	DueThisWeek    int                `json:"due_this_week"`
	CompletionRate int                `json:"completion_rate"`
}
