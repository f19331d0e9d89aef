// Package chart renders day series as PNG bar charts.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
)

const (
	width      = 800
	height     = 400
	barWidth   = 60
	barSpacing = 20
)

// Render draws one bar per date and returns the PNG bytes.
func Render(dates []string, values []float64, label string) ([]byte, error) {
	if len(dates) == 0 {
		return nil, errors.New("chart: no points")
	}
	if len(dates) != len(values) {
		return nil, fmt.Errorf("chart: %d dates for %d values", len(dates), len(values))
	}

	bars := make([]gochart.Value, len(dates))
	top := 0.0
	for i, d := range dates {
		bars[i] = gochart.Value{Label: d, Value: values[i]}
		top = math.Max(top, values[i])
	}

	graph := gochart.BarChart{
		Title:      label,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: gochart.Style{Padding: gochart.Box{Top: 40}},
		YAxis: gochart.YAxis{
			// go-chart cannot draw a zero-height range, which an empty day produces.
			Range: &gochart.ContinuousRange{Min: 0, Max: math.Max(1, top*1.2)},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
