// Package format renders analytics values the way the dashboard shows them:
// pt-BR dates and numbers, percentages and prettified theme labels.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Never is shown in place of a missing timestamp (e.g. no collection yet).
const Never = "Nunca"

var (
	ptBR    = language.BrazilianPortuguese
	printer = message.NewPrinter(ptBR)
)

// Date formats t as "DD/MM/YYYY HH:mm" in local time. Nil yields Never.
func Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Never
	}
	return t.Local().Format("02/01/2006 15:04")
}

// DateShort formats t as "DD/MM" for chart axes.
func DateShort(t time.Time) string {
	return t.Local().Format("02/01")
}

// DateMedium formats t as "DD/MM/YYYY".
func DateMedium(t time.Time) string {
	return t.Local().Format("02/01/2006")
}

// Number formats n with pt-BR digit grouping: 3542 -> "3.542".
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

// Decimal formats f with the given precision and pt-BR separators.
func Decimal(f float64, precision int) string {
	return printer.Sprint(number.Decimal(f, number.Scale(precision)))
}

// Percent renders a 0..1 ratio as a whole percentage: 0.423 -> "42%".
func Percent(ratio float64) string {
	return Decimal(ratio*100, 0) + "%"
}

// Share returns part as a percentage of total, 0 when total is zero.
func Share(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Score renders a sentiment score with two decimals.
func Score(s float64) string {
	return fmt.Sprintf("%.2f", s)
}

// Signed renders a delta with an explicit sign: 0.12 -> "+0.12".
func Signed(delta float64) string {
	if delta > 0 {
		return fmt.Sprintf("+%.2f", delta)
	}
	return fmt.Sprintf("%.2f", delta)
}

// ThemeLabel turns a backend theme key into a display label:
// "saude_publica" -> "Saude Publica".
func ThemeLabel(raw string) string {
	words := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(words) == 0 {
		return raw
	}
	// A Caser is stateful, so build one per call.
	return cases.Title(ptBR).String(strings.Join(words, " "))
}

// Truncate shortens s to maxLen runes, adding "..." if truncated.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return strings.TrimSpace(string(runes[:maxLen-3])) + "..."
}

// Bar renders a horizontal bar of width cells proportional to value/max.
func Bar(value, max float64, width int) string {
	if max <= 0 || width <= 0 || value <= 0 {
		return ""
	}
	n := int(math.Round(value / max * float64(width)))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline maps values in [-1,1] onto block characters.
func Sparkline(values []float64) string {
	var b strings.Builder
	for _, v := range values {
		if v < -1 {
			v = -1
		}
		if v > 1 {
			v = 1
		}
		idx := int(math.Round((v + 1) / 2 * float64(len(sparkLevels)-1)))
		b.WriteRune(sparkLevels[idx])
	}
	return b.String()
}
