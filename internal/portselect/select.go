// Package portselect implements the "which port do we talk to" heuristic
// from SPEC_FULL.md §4.H: prefer a user-supplied name, else the shortest
// name, tiebroken by the largest weighted numeric suffix.
package portselect

// Choose returns the selected port name out of names. If hint is
// non-empty and present in names, it wins outright. Otherwise the
// shortest name wins; ties are broken by Score (larger wins). Returns
// ("", false) if names is empty and hint doesn't match anything.
func Choose(names []string, hint string) (string, bool) {
	if hint != "" {
		for _, n := range names {
			if n == hint {
				return n, true
			}
		}
	}

	if len(names) == 0 {
		return "", false
	}

	best := names[0]
	bestScore := Score(best)
	for _, n := range names[1:] {
		switch {
		case len(n) < len(best):
			best = n
			bestScore = Score(n)
		case len(n) == len(best) && Score(n) > bestScore:
			best = n
			bestScore = Score(n)
		}
	}
	return best, true
}

// Score computes the weighted-numeric-suffix key SPEC_FULL.md §4.H
// describes: scan digits from the end of name, weighting each successive
// digit by ten times its position index, with the ones digit unweighted.
// A name with no numeric tail scores 0.
func Score(name string) int {
	end := len(name)
	start := end
	for start > 0 && isDigit(name[start-1]) {
		start--
	}
	digits := name[start:end]
	if digits == "" {
		return 0
	}

	score := 0
	for pos := 0; pos < len(digits); pos++ {
		weight := 1
		if pos > 0 {
			weight = 10 * pos
		}
		score += int(digits[len(digits)-1-pos]-'0') * weight
	}
	return score
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
