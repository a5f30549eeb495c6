package web

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/vitos/cryptochart/internal/domain"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartBackground = drawing.ColorFromHex("1e293b")
	chartLine       = drawing.ColorFromHex("00ff88")
	chartGray       = drawing.ColorFromHex("808080")
)

// ChartRenderer draws a price series as a dark themed PNG line chart.
type ChartRenderer struct {
	width  int
	height int
}

func NewChartRenderer(width, height int) *ChartRenderer {
	if width <= 0 {
		width = 1200
	}
	if height <= 0 {
		height = 600
	}
	return &ChartRenderer{width: width, height: height}
}

// RenderPNG writes the chart for series to w. The series must be non-empty.
func (c *ChartRenderer) RenderPNG(w io.Writer, coinName, quote string, series domain.PriceSeries) error {
	if series.Len() == 0 {
		return domain.ErrInsufficientData
	}
	if quote == "" {
		quote = "USD"
	}

	axisStyle := chart.Style{
		FontColor:   drawing.ColorWhite,
		FontSize:    10,
		StrokeColor: chartGray.WithAlpha(77),
	}
	gridStyle := chart.Style{
		StrokeColor:     chartGray.WithAlpha(51),
		StrokeWidth:     1,
		StrokeDashArray: []float64{4, 4},
	}

	graph := chart.Chart{
		Width:  c.width,
		Height: c.height,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 10},
		},
		Canvas: chart.Style{
			FillColor:   chartBackground,
			StrokeColor: chartGray.WithAlpha(77),
		},
		XAxis: chart.XAxis{
			Style:          axisStyle,
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006"),
			GridMajorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			Name:           fmt.Sprintf("Price (%s)", quote),
			NameStyle:      chart.Style{FontColor: drawing.ColorWhite, FontSize: 12},
			Style:          axisStyle,
			ValueFormatter: currencyTickFormatter,
			GridMajorStyle: gridStyle,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: fmt.Sprintf("%s Price (%s)", coinName, quote),
				Style: chart.Style{
					StrokeColor: chartLine,
					StrokeWidth: 2,
					FillColor:   chartLine.WithAlpha(77),
				},
				XValues: series.Times(),
				YValues: series.Closes(),
			},
		},
	}

	// go-chart refuses zero-width ranges, so pad degenerate windows.
	if series.Len() == 1 {
		t := series.First().Time()
		graph.XAxis.Range = &chart.ContinuousRange{
			Min: chart.TimeToFloat64(t.Add(-24 * time.Hour)),
			Max: chart.TimeToFloat64(t.Add(24 * time.Hour)),
		}
	}
	if lo, hi := minMax(series); lo == hi {
		pad := 1.0
		if lo != 0 {
			pad = lo * 0.05
			if pad < 0 {
				pad = -pad
			}
		}
		graph.YAxis.Range = &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, chart.Style{
			FillColor:   chartBackground,
			FontColor:   drawing.ColorWhite,
			FontSize:    10,
			StrokeColor: chartGray,
		}),
	}

	return graph.Render(chart.PNG, w)
}

// RenderBase64 returns the PNG as a base64 string for a data URI.
func (c *ChartRenderer) RenderBase64(coinName, quote string, series domain.PriceSeries) (string, error) {
	var buf bytes.Buffer
	if err := c.RenderPNG(&buf, coinName, quote, series); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func currencyTickFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return "$" + formatAmount(f)
	}
	return ""
}

func minMax(series domain.PriceSeries) (float64, float64) {
	lo, hi := series[0].Close, series[0].Close
	for _, p := range series[1:] {
		if p.Close < lo {
			lo = p.Close
		}
		if p.Close > hi {
			hi = p.Close
		}
	}
	return lo, hi
}
