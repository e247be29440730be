// Package render converts count tables into Plotly figure documents that a
// browser can hand straight to Plotly.newPlot.
package render

import (
	"fmt"

	"github.com/case-dashboard/internal/domain"
)

// OrRd is Plotly's sequential orange-red palette, cycled over categories
var OrRd = []string{
	"rgb(255,247,236)", "rgb(254,232,200)", "rgb(253,212,158)",
	"rgb(253,187,132)", "rgb(252,141,89)", "rgb(239,101,72)",
	"rgb(215,48,31)", "rgb(179,0,0)", "rgb(127,0,0)",
}

const (
	titleColor = "#d35400"
	titleSize  = 20
	barWidth   = 0.4
	barHeight  = 300
)

// Figure is a Plotly figure
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace. Bar traces use X/Y, pie traces Labels/Values.
type Trace struct {
	Type          string   `json:"type"`
	Name          string   `json:"name,omitempty"`
	X             []string `json:"x,omitempty"`
	Y             []int    `json:"y,omitempty"`
	Labels        []string `json:"labels,omitempty"`
	Values        []int    `json:"values,omitempty"`
	Marker        Marker   `json:"marker"`
	Width         float64  `json:"width,omitempty"`
	TextTemplate  string   `json:"texttemplate,omitempty"`
	TextPosition  string   `json:"textposition,omitempty"`
	TextInfo      string   `json:"textinfo,omitempty"`
	ShowLegend    bool     `json:"showlegend"`
	HoverTemplate string   `json:"hovertemplate,omitempty"`
}

// Marker carries trace colours
type Marker struct {
	Color  string   `json:"color,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

// Layout is the subset of Plotly layout the dashboard sets
type Layout struct {
	Title   Title  `json:"title"`
	Height  int    `json:"height,omitempty"`
	XAxis   *Axis  `json:"xaxis,omitempty"`
	YAxis   *Axis  `json:"yaxis,omitempty"`
	BarMode string `json:"barmode,omitempty"`
}

// Title is a layout or axis title
type Title struct {
	Text string `json:"text"`
	Font *Font  `json:"font,omitempty"`
}

// Font styles a title
type Font struct {
	Color string `json:"color,omitempty"`
	Size  int    `json:"size,omitempty"`
}

// Axis is a cartesian axis
type Axis struct {
	Title Title `json:"title"`
}

// PlotlyRenderer renders chart requests as Plotly figures
type PlotlyRenderer struct {
	palette []string
}

// NewPlotlyRenderer uses OrRd when palette is empty
func NewPlotlyRenderer(palette []string) *PlotlyRenderer {
	if len(palette) == 0 {
		palette = OrRd
	}
	return &PlotlyRenderer{palette: palette}
}

// Render builds the figure for req. An empty table keeps the title and axes
// and draws nothing.
func (r *PlotlyRenderer) Render(req domain.ChartRequest) (Figure, error) {
	switch req.Kind {
	case domain.ChartBar:
		return r.bar(req), nil
	case domain.ChartPie:
		return r.pie(req), nil
	default:
		return Figure{}, fmt.Errorf("unsupported chart kind %q", req.Kind)
	}
}

// bar draws one trace per category so each bar gets its own colour and
// legend entry
func (r *PlotlyRenderer) bar(req domain.ChartRequest) Figure {
	traces := make([]Trace, 0, len(req.Table))
	for i, e := range req.Table {
		traces = append(traces, Trace{
			Type:          "bar",
			Name:          e.Category,
			X:             []string{e.Category},
			Y:             []int{e.Count},
			Marker:        Marker{Color: r.color(i)},
			Width:         barWidth,
			TextTemplate:  "%{y}",
			TextPosition:  "outside",
			ShowLegend:    true,
			HoverTemplate: fmt.Sprintf("%s=%%{x}<br>%s=%%{y}<extra></extra>", req.CategoryLabel, req.CountLabel),
		})
	}
	if len(traces) == 0 {
		traces = append(traces, Trace{Type: "bar", X: []string{}, Y: []int{}})
	}

	return Figure{
		Data: traces,
		Layout: Layout{
			Title:   Title{Text: req.Title, Font: &Font{Color: titleColor, Size: titleSize}},
			Height:  barHeight,
			XAxis:   &Axis{Title: Title{Text: req.CategoryLabel}},
			YAxis:   &Axis{Title: Title{Text: req.CountLabel}},
			BarMode: "relative",
		},
	}
}

func (r *PlotlyRenderer) pie(req domain.ChartRequest) Figure {
	colors := make([]string, len(req.Table))
	for i := range req.Table {
		colors[i] = r.color(i)
	}

	return Figure{
		Data: []Trace{{
			Type:       "pie",
			Labels:     req.Table.Categories(),
			Values:     req.Table.Counts(),
			Marker:     Marker{Colors: colors},
			TextInfo:   "percent+label",
			ShowLegend: true,
		}},
		Layout: Layout{
			Title: Title{Text: req.Title},
		},
	}
}

func (r *PlotlyRenderer) color(i int) string {
	return r.palette[i%len(r.palette)]
}
