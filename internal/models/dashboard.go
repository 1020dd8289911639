package models

import "time"

// DashboardStats aggregates a user's records over a trailing window.
type DashboardStats struct {
	Days                    int                 `json:"days"`
	Since                   time.Time           `json:"since"`
	MealCount               int                 `json:"mealCount"`
	GasCount                int                 `json:"gasCount"`
	AvgGasIntensity         float64             `json:"avgGasIntensity"`
	OutputCount             int                 `json:"outputCount"`
	IrrigationCount         int                 `json:"irrigationCount"`
	AvgIrrigationComfort    float64             `json:"avgIrrigationComfort"`
	EntryCount              int                 `json:"entryCount"`
	RiskDistribution        map[RiskLevel]int   `json:"riskDistribution"`
	ConsistencyDistribution map[Consistency]int `json:"consistencyDistribution"`
}

// ActivityItem is one row of the merged recent-activity feed.
type ActivityItem struct {
	ID        string    `json:"id" db:"id"`
	Kind      string    `json:"kind" db:"kind"`
	Summary   string    `json:"summary" db:"summary"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
