package models

// CompanyStats aggregates counts across a company for the dashboard.
type CompanyStats struct {
	Projects       int `db:"projects" json:"projects"`
	Members        int `db:"members" json:"members"`
	OpenTasks      int `db:"open_tasks" json:"open_tasks"`
	Requirements   int `db:"requirements" json:"requirements"`
	TestCases      int `db:"test_cases" json:"test_cases"`
	ExecutionsRun  int `db:"executions_run" json:"executions_run"`
	ExecutionsPass int `db:"executions_pass" json:"executions_pass"`
	OpenDefects    int `db:"open_defects" json:"open_defects"`
}

// DefectSeverityCount is one row of the defects-by-severity breakdown.
type DefectSeverityCount struct {
	Severity string `db:"severity" json:"severity"`
	Count    int    `db:"count" json:"count"`
}

// TaskStatusCount is one row of the tasks-by-column breakdown.
type TaskStatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}
