package validator

const (
	maxScore = 100

	firstErrorPenalty      = 55
	additionalErrorPenalty = 10
)

var warningPenalty = map[Impact]int{
	ImpactLow:    3,
	ImpactMedium: 7,
	ImpactHigh:   15,
}

// Score computes the 0-100 confidence score for a set of findings.
// Any error drops the score below 50; warnings subtract by impact.
func Score(errs []ValidationError, warns []ValidationWarning) int {
	score := maxScore
	if n := len(errs); n > 0 {
		score -= firstErrorPenalty + (n-1)*additionalErrorPenalty
	}
	for _, w := range warns {
		p, ok := warningPenalty[w.Impact]
		if !ok {
			p = warningPenalty[ImpactMedium]
		}
		score -= p
	}
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
