package models

import "time"

// Column names the dashboard reads from the order table.
const (
	ColumnAge       = "age"
	ColumnOrderDate = "order_date"
	ColumnCity      = "city"
)

// Age group labels in the order they are charted.
const (
	AgeAdult    = "Adult"
	AgeTeenager = "Teenager"
	AgeSenior   = "Senior"
)

// AgeGroups is the fixed category axis of the age distribution.
var AgeGroups = []string{AgeAdult, AgeTeenager, AgeSenior}

type AgeGroupCount struct {
	AgeGroup string `json:"age_group"`
	Count    int    `json:"count"`
}

type DailyOrders struct {
	Date  time.Time `json:"order_date"`
	Count int       `json:"order_count"`
}

type CityOrders struct {
	City  string `json:"city"`
	Count int    `json:"order_count"`
}

// DashboardView holds the three views computed for a single render.
type DashboardView struct {
	AgeGroups    []AgeGroupCount `json:"age_groups"`
	OrdersByDate []DailyOrders   `json:"orders_by_date"`
	TopCities    []CityOrders    `json:"top_cities"`
	MaxCityCount int             `json:"max_city_count"`
	RecordCount  int             `json:"record_count"`
	LoadedAt     time.Time       `json:"loaded_at"`
}
