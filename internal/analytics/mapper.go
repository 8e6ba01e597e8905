package analytics

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/chart"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/database"
)

// ErrUnmappable signals a result set whose shape cannot be turned into a
// chart, e.g. fewer than two columns. It is a pipeline failure, unlike an
// empty result, which maps to an empty spec and the no-data outcome.
var ErrUnmappable = errors.New("dynamic query results could not be mapped to graph data")

// mappingStrategy is one row of the mapper's dispatch table: the first
// strategy whose match function accepts the plan maps the rows.
type mappingStrategy struct {
	name  string
	match func(p *QueryPlan) bool
	apply func(rs *database.ResultSet, p *QueryPlan) (*chart.Spec, error)
}

var mappingStrategies = []mappingStrategy{
	{
		name:  "categorical",
		match: func(p *QueryPlan) bool { return p.GraphType == "pie" || p.GraphType == "doughnut" },
		apply: mapCategorical,
	},
	{
		name:  "multi_series_trend",
		match: func(p *QueryPlan) bool { return p.Comparison == "trend" && p.GraphType == "line" },
		apply: mapTrend,
	},
	{
		name: "sport_followers",
		match: func(p *QueryPlan) bool {
			return p.EntityType == "sport" && p.Metric == "follower_count"
		},
		apply: func(rs *database.ResultSet, p *QueryPlan) (*chart.Spec, error) {
			return mapNamedColumns(rs, p, "sport", "follower_count", "")
		},
	},
	{
		name: "influencer_followers",
		match: func(p *QueryPlan) bool {
			return p.EntityType == "influencer" && p.Metric == "follower_count"
		},
		apply: func(rs *database.ResultSet, p *QueryPlan) (*chart.Spec, error) {
			return mapNamedColumns(rs, p, "username", "follower_count", "@")
		},
	},
	{
		name:  "generic",
		match: func(p *QueryPlan) bool { return true },
		apply: mapGeneric,
	},
}

// MapChart converts a result set into a chart spec using the plan to pick a
// mapping strategy. An empty result set yields a spec with empty labels,
// which the pipeline reports as the no-data outcome.
func MapChart(rs *database.ResultSet, plan *QueryPlan) (*chart.Spec, error) {
	if rs.Empty() {
		return emptySpec(plan), nil
	}
	for _, s := range mappingStrategies {
		if s.match(plan) {
			return s.apply(rs, plan)
		}
	}
	return nil, ErrUnmappable
}

func emptySpec(plan *QueryPlan) *chart.Spec {
	return &chart.Spec{
		Type:    chart.Type(plan.GraphType),
		Options: chartOptions(plan),
	}
}

func chartOptions(plan *QueryPlan) chart.Options {
	return chart.Options{
		Title:  plan.TitleSuggestion,
		Theme:  plan.Theme(),
		Legend: chart.Legend{Display: plan.ShowLegend(), Position: "top"},
		Grid:   chart.Grid{Display: plan.ShowGrid()},
	}
}

// mapCategorical handles pie and doughnut charts: one label per row, one
// value per row, one dataset painted with the categorical palette.
func mapCategorical(rs *database.ResultSet, plan *QueryPlan) (*chart.Spec, error) {
	if len(rs.Columns) < 2 {
		return nil, ErrUnmappable
	}
	labels := make([]string, 0, len(rs.Rows))
	values := make([]float64, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		labels = append(labels, toString(row[rs.Columns[0]]))
		values = append(values, toFloat(row[rs.Columns[1]]))
	}

	return &chart.Spec{
		Type:   chart.Type(plan.GraphType),
		Labels: labels,
		Datasets: []chart.Dataset{{
			Label:           plan.Metric,
			Data:            values,
			BackgroundColor: chart.CategoricalPalette,
		}},
		Options: chartOptions(plan),
	}, nil
}

// mapTrend handles line charts with trend comparison: the first column is
// the label axis and every remaining column becomes its own series.
func mapTrend(rs *database.ResultSet, plan *QueryPlan) (*chart.Spec, error) {
	if len(rs.Columns) < 2 {
		return nil, ErrUnmappable
	}
	labels := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		labels = append(labels, toString(row[rs.Columns[0]]))
	}

	valueColumns := rs.Columns[1:]
	datasets := make([]chart.Dataset, 0, len(valueColumns))
	for i, col := range valueColumns {
		data := make([]float64, 0, len(rs.Rows))
		for _, row := range rs.Rows {
			data = append(data, toFloat(row[col]))
		}
		base := chart.SeriesPalette[i%len(chart.SeriesPalette)]
		datasets = append(datasets, chart.Dataset{
			Label:           columnLabel(col),
			Data:            data,
			BorderColor:     base,
			BackgroundColor: []string{base + "20"},
			Fill:            plan.GraphType == "area",
			Tension:         0.4,
		})
	}

	return &chart.Spec{
		Type:     chart.Type(plan.GraphType),
		Labels:   labels,
		Datasets: datasets,
		Options:  chartOptions(plan),
	}, nil
}

// mapNamedColumns maps by explicit column names, with an optional prefix on
// labels.
func mapNamedColumns(rs *database.ResultSet, plan *QueryPlan, labelCol, valueCol, prefix string) (*chart.Spec, error) {
	labels := make([]string, 0, len(rs.Rows))
	values := make([]float64, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		labels = append(labels, prefix+toString(row[labelCol]))
		values = append(values, toFloat(row[valueCol]))
	}
	return singleSeriesSpec(plan, labels, values), nil
}

// mapGeneric takes the first column as labels and the second as values.
func mapGeneric(rs *database.ResultSet, plan *QueryPlan) (*chart.Spec, error) {
	if len(rs.Columns) < 2 {
		return nil, ErrUnmappable
	}
	labels := make([]string, 0, len(rs.Rows))
	values := make([]float64, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		labels = append(labels, toString(row[rs.Columns[0]]))
		values = append(values, toFloat(row[rs.Columns[1]]))
	}
	return singleSeriesSpec(plan, labels, values), nil
}

func singleSeriesSpec(plan *QueryPlan, labels []string, values []float64) *chart.Spec {
	fill := "#4F46E520"
	if plan.GraphType == "bar" {
		fill = "#4F46E580"
	}
	borderWidth := 1.0
	if plan.GraphType == "line" {
		borderWidth = 3.0
	}
	tension := 0.0
	if plan.GraphType == "line" || plan.GraphType == "area" {
		tension = 0.4
	}

	return &chart.Spec{
		Type:   chart.Type(plan.GraphType),
		Labels: labels,
		Datasets: []chart.Dataset{{
			Label:           plan.DatasetLabel(),
			Data:            values,
			BackgroundColor: []string{fill},
			BorderColor:     "#4F46E5",
			BorderWidth:     borderWidth,
			Fill:            plan.GraphType == "area",
			Tension:         tension,
		}},
		Options: chartOptions(plan),
	}
}

func columnLabel(col string) string {
	out := make([]rune, 0, len(col))
	for _, r := range col {
		if r == '_' {
			out = append(out, ' ')
			continue
		}
		if r >= 'a' && r <= 'z' {
			r = r - 'a' + 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

// toFloat coerces a scanned database value to float64. Unparseable values
// become zero rather than failing the whole chart.
func toFloat(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case []byte:
		f, _ := strconv.ParseFloat(string(t), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
