package analytics

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Intent is the top-level classification of a chat message.
type Intent string

const (
	IntentGraphRequest Intent = "graph_request"
	IntentOther        Intent = "other"
)

// FlexInt tolerates both numeric and quoted-string JSON values. The
// classifier model is asked for a number but occasionally quotes it.
type FlexInt struct {
	Value int
	Set   bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Tolerate junk in this one field rather than discarding the plan.
		return nil
	}
	f.Value = n
	f.Set = true
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// Filter narrows a graph request to an influencer, keyword, or top-N limit.
type Filter struct {
	Influencer string  `json:"influencer"`
	Keyword    string  `json:"keyword"`
	Limit      FlexInt `json:"limit"`
}

// ChartPrefs holds presentation preferences extracted from the message.
type ChartPrefs struct {
	Theme      string `json:"theme"`
	ShowLegend *bool  `json:"show_legend"`
	ShowGrid   *bool  `json:"show_grid"`
}

// QueryPlan is the structured output of intent classification. It is built
// once per request and never mutated after Normalize.
type QueryPlan struct {
	Intent          Intent      `json:"intent"`
	GraphType       string      `json:"graph_type"`
	EntityType      string      `json:"entity_type"`
	Metric          string      `json:"metric"`
	Comparison      string      `json:"comparison"`
	TimePeriod      string      `json:"time_period"`
	GroupBy         string      `json:"group_by"`
	Filter          *Filter     `json:"filter"`
	TitleSuggestion string      `json:"title_suggestion"`
	ChartOptions    *ChartPrefs `json:"chart_options"`
}

// Normalize fills the defaults downstream stages rely on.
func (p *QueryPlan) Normalize() {
	if p.Intent == "" {
		p.Intent = IntentOther
	}
	if p.GraphType == "" {
		p.GraphType = "bar"
	}
	if p.TitleSuggestion == "" {
		p.TitleSuggestion = "Generated Graph"
	}
}

// Theme returns the requested theme or the light default.
func (p *QueryPlan) Theme() string {
	if p.ChartOptions != nil && p.ChartOptions.Theme != "" {
		return p.ChartOptions.Theme
	}
	return "light"
}

// ShowLegend reports the legend preference, defaulting to visible.
func (p *QueryPlan) ShowLegend() bool {
	if p.ChartOptions != nil && p.ChartOptions.ShowLegend != nil {
		return *p.ChartOptions.ShowLegend
	}
	return true
}

// ShowGrid reports the grid preference, defaulting to visible.
func (p *QueryPlan) ShowGrid() bool {
	if p.ChartOptions != nil && p.ChartOptions.ShowGrid != nil {
		return *p.ChartOptions.ShowGrid
	}
	return true
}

// DatasetLabel derives a display label from the metric name, e.g.
// "follower_count" becomes "FOLLOWER COUNT".
func (p *QueryPlan) DatasetLabel() string {
	if p.Metric == "" {
		return "VALUE"
	}
	return strings.ToUpper(strings.ReplaceAll(p.Metric, "_", " "))
}

// parsePlan decodes a JSON document into a normalized QueryPlan.
func parsePlan(raw string) (*QueryPlan, error) {
	var plan QueryPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, err
	}
	plan.Normalize()
	return &plan, nil
}
