package models

// FieldCount is the number of projects in one field.
type FieldCount struct {
	Field string `json:"field"`
	Count int64  `json:"count"`
}

// YearCount is the number of projects for one year.
type YearCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

// SavedCount is a project ranked by how many users saved it.
type SavedCount struct {
	ProjectID uint   `json:"projectId"`
	Title     string `json:"title"`
	Saves     int64  `json:"saves"`
}

// AnalyticsTotals are headline counts for the admin dashboard.
type AnalyticsTotals struct {
	ActiveProjects  int64 `json:"activeProjects"`
	DeletedProjects int64 `json:"deletedProjects"`
	Students        int64 `json:"students"`
	Admins          int64 `json:"admins"`
	Saves           int64 `json:"saves"`
}

// Analytics is the admin dashboard summary over active projects.
type Analytics struct {
	Totals   AnalyticsTotals `json:"totals"`
	ByField  []FieldCount    `json:"byField"`
	ByYear   []YearCount     `json:"byYear"`
	TopSaved []SavedCount    `json:"topSaved"`
}

// DuplicateGroup is a set of active projects that look like the same paper.
type DuplicateGroup struct {
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	Authors  []string `json:"authors"`
	IDs      []uint   `json:"ids"`
	SameWork bool     `json:"sameWork"`
}

// PruneResult reports what a field prune removed (or would remove).
type PruneResult struct {
	Projects int64        `json:"projects"`
	Saves    int64        `json:"saves"`
	Before   []FieldCount `json:"before"`
	After    []FieldCount `json:"after"`
	DryRun   bool         `json:"dryRun"`
}
