// Package charts builds Vega-Lite specifications for the dashboard views.
// The browser renders them with vega-embed.
package charts

import (
	"food-dashboard/internal/models"
)

const (
	schemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

	// DefaultLineColor is used when OrdersLineChart gets an empty color.
	DefaultLineColor = "#1f77b4"

	fieldAgeGroup   = "Age Group"
	fieldCount      = "Count"
	fieldOrderDate  = "order_date"
	fieldOrderCount = "Order Count"
)

type Spec struct {
	Schema   string   `json:"$schema"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Data     Data     `json:"data"`
	Mark     Mark     `json:"mark"`
	Encoding Encoding `json:"encoding"`
	Config   *Config  `json:"config,omitempty"`
}

type Data struct {
	Values []map[string]any `json:"values"`
}

type Mark struct {
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
	Point bool   `json:"point,omitempty"`
}

type Encoding struct {
	X Channel `json:"x"`
	Y Channel `json:"y"`
}

type Channel struct {
	Field string   `json:"field"`
	Type  string   `json:"type"`
	Title string   `json:"title,omitempty"`
	Sort  []string `json:"sort,omitempty"`
}

// Config carries the dark theme colours.
type Config struct {
	Background string     `json:"background"`
	View       ViewConfig `json:"view"`
	Axis       AxisConfig `json:"axis"`
}

type ViewConfig struct {
	Stroke string `json:"stroke"`
}

type AxisConfig struct {
	DomainColor string `json:"domainColor"`
	GridColor   string `json:"gridColor"`
	LabelColor  string `json:"labelColor"`
	TitleColor  string `json:"titleColor"`
	TickColor   string `json:"tickColor"`
}

func darkTheme() *Config {
	return &Config{
		Background: "#333",
		View:       ViewConfig{Stroke: "#888"},
		Axis: AxisConfig{
			DomainColor: "#fff",
			GridColor:   "#888",
			LabelColor:  "#fff",
			TitleColor:  "#fff",
			TickColor:   "#888",
		},
	}
}

// AgeBarChart draws the age distribution as bars on the fixed age axis.
func AgeBarChart(groups []models.AgeGroupCount, color string) Spec {
	values := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		values = append(values, map[string]any{
			fieldAgeGroup: g.AgeGroup,
			fieldCount:    g.Count,
		})
	}

	return Spec{
		Schema: schemaURL,
		Width:  400,
		Height: 350,
		Data:   Data{Values: values},
		Mark:   Mark{Type: "bar", Color: color},
		Encoding: Encoding{
			X: Channel{Field: fieldAgeGroup, Type: "nominal", Sort: models.AgeGroups},
			Y: Channel{Field: fieldCount, Type: "quantitative"},
		},
		Config: darkTheme(),
	}
}

// OrdersLineChart draws orders per date as a line with point markers.
func OrdersLineChart(orders []models.DailyOrders, color string) Spec {
	if color == "" {
		color = DefaultLineColor
	}

	values := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		values = append(values, map[string]any{
			fieldOrderDate:  o.Date.Format("2006-01-02T15:04:05Z"),
			fieldOrderCount: o.Count,
		})
	}

	return Spec{
		Schema: schemaURL,
		Width:  600,
		Height: 350,
		Data:   Data{Values: values},
		Mark:   Mark{Type: "line", Color: color, Point: true},
		Encoding: Encoding{
			X: Channel{Field: fieldOrderDate, Type: "temporal", Title: "Order Date"},
			Y: Channel{Field: fieldOrderCount, Type: "quantitative", Title: "Number of Orders"},
		},
		Config: darkTheme(),
	}
}
