package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"

	"github.com/rcliao/expert-dx/internal/model"
)

func printJSON(w io.Writer, v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

func labelColor(label string) *color.Color {
	if strings.Contains(strings.ToLower(label), "dengue") {
		return color.New(color.FgRed, color.Bold)
	}
	return color.New(color.FgBlue, color.Bold)
}

func printDiagnosis(w io.Writer, engineName string, d model.Diagnosis) {
	dim := color.New(color.FgHiBlack)

	_, _ = dim.Fprintln(w, "  "+strings.Repeat("━", 50))
	_, _ = dim.Fprintf(w, "  %s\n", engineName)
	_, _ = labelColor(d.Label).Fprintf(w, "  %s\n", d.Label)
	printConfidenceBar(w, d.Confidence)
	fmt.Fprintln(w)
	for _, line := range d.Reasoning {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintln(w)
}

func printConfidenceBar(w io.Writer, confidence float64) {
	const barWidth = 24
	pct := int(math.Round(confidence * 100))
	filled := pct * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	var barColor *color.Color
	switch {
	case pct >= 80:
		barColor = color.New(color.FgGreen)
	case pct >= 40:
		barColor = color.New(color.FgYellow)
	default:
		barColor = color.New(color.FgRed)
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	fmt.Fprintf(w, "  Confidence: %d%% ", pct)
	_, _ = barColor.Fprintln(w, bar)
}
