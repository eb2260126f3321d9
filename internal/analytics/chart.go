package analytics

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/omercanyy/investrack/internal/models"
)

// RenderPositionsChart renders a PNG bar chart of current market value per
// position. Bars are green for positions in profit and red for positions at
// a loss. Returns raw PNG bytes.
func RenderPositionsChart(positions []models.AggregatedPosition) ([]byte, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("no positions to chart")
	}

	gain := drawing.ColorFromHex("16a34a")  // green-600
	loss := drawing.ColorFromHex("dc2626")  // red-600
	basis := drawing.ColorFromHex("9ca3af") // gray-400

	bars := make([]chart.Value, 0, len(positions))
	for _, pos := range positions {
		color := gain
		switch {
		case pos.GainLoss < 0:
			color = loss
		case pos.GainLoss == 0:
			color = basis
		}
		bars = append(bars, chart.Value{
			Label: pos.Ticker,
			Value: pos.CurrentValue,
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
			},
		})
	}

	graph := chart.BarChart{
		Title:    "Position Market Value",
		Width:    max(900, 60*len(bars)),
		Height:   400,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
