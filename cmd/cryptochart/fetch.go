package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vitos/cryptochart/internal/usecase"
	"github.com/vitos/cryptochart/internal/web"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <coin>",
	Short: "Fetch one coin and print its summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

var (
	chartOutput string
	chartWidth  int
	chartHeight int
)

var chartCmd = &cobra.Command{
	Use:   "chart <coin>",
	Short: "Fetch one coin and write its chart as PNG",
	Args:  cobra.ExactArgs(1),
	RunE:  runChart,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "Output file (default <coin>.png)")
	chartCmd.Flags().IntVar(&chartWidth, "width", 0, "Chart width in pixels (overrides config)")
	chartCmd.Flags().IntVar(&chartHeight, "height", 0, "Chart height in pixels (overrides config)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.service.GetCoinView(cmd.Context(), args[0])
	if res.Status != usecase.ViewOK {
		return fmt.Errorf("%s: %s", args[0], describe(res))
	}

	view := web.NewMetricsView(res.Metrics)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s/%s)\n", res.CoinName, res.Coin.Symbol, res.Coin.QuoteCurrency)
	fmt.Fprintf(out, "  points:       %d\n", res.Series.Len())
	fmt.Fprintf(out, "  last price:   %s\n", view.LastPrice)
	fmt.Fprintf(out, "  last update:  %s\n", view.LastTimestamp)
	fmt.Fprintf(out, "  total growth: %s\n", view.TotalGrowth)
	return nil
}

func runChart(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.service.GetCoinView(cmd.Context(), args[0])
	if res.Status != usecase.ViewOK {
		return fmt.Errorf("%s: %s", args[0], describe(res))
	}

	width, height := a.cfg.Chart.Width, a.cfg.Chart.Height
	if chartWidth > 0 {
		width = chartWidth
	}
	if chartHeight > 0 {
		height = chartHeight
	}

	path := chartOutput
	if path == "" {
		path = res.Coin.ID + ".png"
	}
	renderer := web.NewChartRenderer(width, height)
	err = writeChartFile(path, func(w io.Writer) error {
		return renderer.RenderPNG(w, res.CoinName, res.Coin.QuoteCurrency, res.Series)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", path)
	return nil
}

// writeChartFile renders into memory first so a failed render never leaves
// a partial file behind.
func writeChartFile(path string, render func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func describe(res usecase.ViewResult) string {
	switch res.Status {
	case usecase.ViewNotFound:
		return "invalid cryptocurrency"
	case usecase.ViewInsufficientData:
		return fmt.Sprintf("insufficient data (%v)", res.Err)
	default:
		return fmt.Sprintf("error fetching data (%v)", res.Err)
	}
}
