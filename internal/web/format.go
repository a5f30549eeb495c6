package web

import (
	"github.com/vitos/cryptochart/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "2006-01-02 15:04:05"

var amountPrinter = message.NewPrinter(language.English)

// formatAmount renders v with thousands separators and two decimals.
func formatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// MetricsView holds the display strings shown next to the chart.
type MetricsView struct {
	LastPrice     string `json:"last_price"`
	LastTimestamp string `json:"last_timestamp"`
	TotalGrowth   string `json:"total_growth"`
}

func NewMetricsView(m domain.SummaryMetrics) MetricsView {
	return MetricsView{
		LastPrice:     formatAmount(m.LastPrice),
		LastTimestamp: m.LastTime().Format(dateLayout),
		TotalGrowth:   m.GrowthSign + formatAmount(m.GrowthPercent) + "%",
	}
}
