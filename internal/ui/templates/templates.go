// Package templates renders the dashboard page and its fragments as templ
// components.
package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"food-dashboard/internal/charts"
	"food-dashboard/internal/models"
)

const (
	PageTitle = "Food Delivery Orders Dashboard"

	datastarScript   = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
	vegaScript       = "https://cdn.jsdelivr.net/npm/vega@5"
	vegaLiteScript   = "https://cdn.jsdelivr.net/npm/vega-lite@5"
	vegaEmbedScript  = "https://cdn.jsdelivr.net/npm/vega-embed@6"
	datasetSourceURL = "https://www.kaggle.com/datasets/zubairamuti/foodpanda-review-dataset"
)

var funcs = template.FuncMap{
	"percent": func(count, maxCount int) int {
		if maxCount <= 0 {
			return 0
		}
		return count * 100 / maxCount
	},
}

var views = template.Must(template.New("views").Funcs(funcs).Parse(`
{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script type="module" src="{{.DatastarScript}}"></script>
<script src="{{.VegaScript}}"></script>
<script src="{{.VegaLiteScript}}"></script>
<script src="{{.VegaEmbedScript}}"></script>
<script>
window.renderChart = function (target, spec) {
  if (!spec || !window.vegaEmbed) { return; }
  window.vegaEmbed(target, spec, { actions: false });
};
</script>
<style>
body { background: #0e1117; color: #fafafa; font-family: sans-serif; margin: 0; padding: 1.5rem; }
.columns { display: grid; grid-template-columns: 1.5fr 4.5fr 2fr; gap: 1rem; }
h4 { margin: 1rem 0 0.5rem; }
.chart { width: 100%; }
table.cities { width: 100%; border-collapse: collapse; }
table.cities th, table.cities td { padding: 0.35rem 0.5rem; text-align: left; border-bottom: 1px solid #262730; }
.progress { display: flex; align-items: center; gap: 0.5rem; }
.progress .bar { flex: 1; height: 0.5rem; background: #262730; border-radius: 0.25rem; }
.progress .fill { height: 100%; background: #6DC8E4; border-radius: 0.25rem; }
details.about { margin-top: 1rem; border: 1px solid #262730; border-radius: 0.5rem; padding: 0.5rem 1rem; }
.accent { color: #ffa421; font-weight: bold; }
button.refresh { background: #262730; color: #fafafa; border: 1px solid #444; border-radius: 0.25rem; padding: 0.25rem 0.75rem; cursor: pointer; }
</style>
</head>
<body data-signals="{{.Signals}}">
<div class="columns">
<div id="filler"></div>
<div id="charts">
<h4>Age Group Distribution</h4>
{{template "ageChart"}}
<h4>Frequency of Orders Over Time</h4>
{{template "ordersChart"}}
</div>
<div id="cities">
<h4>Top Cities by Number of Orders</h4>
{{template "citiesTable" .Cities}}
{{template "about" .About}}
<button class="refresh" data-on:click="@get('/sse/refresh-all')">Refresh</button>
</div>
</div>
</body>
</html>
{{end}}

{{define "ageChart"}}<div id="age-chart" class="chart" data-effect="renderChart('#age-chart', $ageChart)"></div>{{end}}

{{define "ordersChart"}}<div id="orders-chart" class="chart" data-effect="renderChart('#orders-chart', $ordersChart)"></div>{{end}}

{{define "citiesTable"}}<div id="cities-table">
<table class="cities">
<thead><tr><th>City</th><th>Order Count</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.City}}</td>
<td><div class="progress"><span>{{printf "%d" .Count}}</span><div class="bar"><div class="fill" style="width: {{percent .Count $.Max}}%"></div></div></div></td>
</tr>
{{end}}</tbody>
</table>
</div>{{end}}

{{define "about"}}<details class="about" open>
<summary>About</summary>
<ul>
<li>Data: <a href="{{.SourceURL}}">FoodPanda Review Dataset</a>.</li>
<li><span class="accent">Age Group Distribution</span>: distribution of customers across different age groups (teenagers, adults, seniors)</li>
<li><span class="accent">Frequency of Orders Over Time</span>: number of orders placed over time from 2024 to 2025</li>
</ul>
</details>{{end}}
`))

type citiesData struct {
	Rows []models.CityOrders
	Max  int
}

type aboutData struct {
	SourceURL string
}

type pageData struct {
	Title           string
	DatastarScript  string
	VegaScript      string
	VegaLiteScript  string
	VegaEmbedScript string
	Signals         string
	Cities          citiesData
	About           aboutData
}

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := views.ExecuteTemplate(w, name, data); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		return nil
	})
}

// ChartSignals is the Datastar signal payload carrying both chart specs.
func ChartSignals(view models.DashboardView, color string) map[string]any {
	return map[string]any{
		"ageChart":    charts.AgeBarChart(view.AgeGroups, color),
		"ordersChart": charts.OrdersLineChart(view.OrdersByDate, color),
	}
}

// Dashboard renders the full three-column page for one view.
func Dashboard(view models.DashboardView, color string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := json.Marshal(ChartSignals(view, color))
		if err != nil {
			return fmt.Errorf("marshal chart signals: %w", err)
		}

		data := pageData{
			Title:           PageTitle,
			DatastarScript:  datastarScript,
			VegaScript:      vegaScript,
			VegaLiteScript:  vegaLiteScript,
			VegaEmbedScript: vegaEmbedScript,
			Signals:         string(signals),
			Cities:          citiesData{Rows: view.TopCities, Max: view.MaxCityCount},
			About:           aboutData{SourceURL: datasetSourceURL},
		}
		return render("page", data).Render(ctx, w)
	})
}

// CitiesTable renders the top-cities table with bars scaled to maxCount.
func CitiesTable(cities []models.CityOrders, maxCount int) templ.Component {
	return render("citiesTable", citiesData{Rows: cities, Max: maxCount})
}

func AgeChart() templ.Component {
	return render("ageChart", nil)
}

func OrdersChart() templ.Component {
	return render("ordersChart", nil)
}

func About() templ.Component {
	return render("about", aboutData{SourceURL: datasetSourceURL})
}
