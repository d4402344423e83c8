package campaign

import (
	"math"
	"sort"

	"github.com/abelbrown/campaignwatch/internal/api"
)

// Polarity is the coarse class of a sentiment score.
type Polarity int

const (
	Neutral Polarity = iota
	Positive
	Negative
)

// polarityBand is the half-width of the neutral zone around zero.
const polarityBand = 0.05

// Classify buckets a score in [-1,1].
func Classify(score float64) Polarity {
	switch {
	case score >= polarityBand:
		return Positive
	case score <= -polarityBand:
		return Negative
	default:
		return Neutral
	}
}

// Label returns the pt-BR badge text.
func (p Polarity) Label() string {
	switch p {
	case Positive:
		return "Positivo"
	case Negative:
		return "Negativo"
	default:
		return "Neutro"
	}
}

// Interpretation explains an average sentiment score in one sentence.
func Interpretation(score float64) string {
	switch {
	case score >= 0.1:
		return "O público está bastante receptivo."
	case score >= 0.05:
		return "Sentimento levemente positivo."
	case score >= -0.05:
		return "Sentimento neutro, sem tendência clara."
	case score >= -0.1:
		return "Atenção: leve negatividade nos comentários."
	default:
		return "Alerta: mais negatividade que o ideal."
	}
}

// ContextVerdict summarizes a contextual sentiment breakdown.
func ContextVerdict(cs api.ContextualSentiment) string {
	switch {
	case cs.ApoioPercent > 50:
		return "A maioria dos comentários demonstra apoio à candidata, mesmo os que expressam revolta com o tema abordado."
	case cs.ContraPercent > 50:
		return "A maioria dos comentários é crítica diretamente à candidata. Atenção redobrada neste conteúdo."
	default:
		return "Os comentários estão divididos. Pode ser necessário ajustar a abordagem do conteúdo."
	}
}

// Standing is how our value compares against a competitor's.
type Standing int

const (
	Tied Standing = iota
	Winning
	Losing
)

// tieTolerance is the absolute difference below which values count as equal.
const tieTolerance = 0.01

// Compare reports our standing against theirs.
func Compare(ours, theirs float64) Standing {
	diff := ours - theirs
	switch {
	case math.Abs(diff) < tieTolerance:
		return Tied
	case diff > 0:
		return Winning
	default:
		return Losing
	}
}

var priorityRank = map[string]int{
	api.PriorityHigh:   0,
	api.PriorityMedium: 1,
	api.PriorityLow:    2,
}

// SortByPriority returns a copy ordered high, medium, low. Equal
// priorities keep their backend order.
func SortByPriority(in []api.Suggestion) []api.Suggestion {
	out := make([]api.Suggestion, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i].Priority) < rank(out[j].Priority)
	})
	return out
}

func rank(p string) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}
