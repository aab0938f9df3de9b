package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// Bet type names produced by ClassifyResult.
const (
	BetTypeKOTKO             = "KO/TKO"
	BetTypeDecision          = "Decision"
	BetTypeSplitDecision     = "Split Decision"
	BetTypeUnanimousDecision = "Unanimous Decision"
)

var koClockRegex = regexp.MustCompile(`(\d{1,2}:\d{2})\s*R(\d+)`)

// Classification is the structured form of a free-text bout outcome.
type Classification struct {
	BetType string `json:"bet_type"`
	Round   int    `json:"round"`
	Time    string `json:"time"`
}

// ClassifyResult maps an outcome description such as "KO/TKO, 0:51 R2" or "Split Dec"
// to a bet type with round and time. Checks are ordered: KO/TKO wins over Dec. Text
// matching neither falls back to plain "Decision".
func ClassifyResult(text string) Classification {
	c := Classification{BetType: BetTypeDecision}

	switch {
	case strings.Contains(text, "KO/TKO"):
		c.BetType = BetTypeKOTKO
		if m := koClockRegex.FindStringSubmatch(text); m != nil {
			if round, err := strconv.Atoi(m[2]); err == nil {
				c.Round = round
				c.Time = m[1]
			}
		}
	case strings.Contains(text, "Dec"):
		switch {
		case strings.Contains(text, "Split"):
			c.BetType = BetTypeSplitDecision
		case strings.Contains(text, "Unanimous"):
			c.BetType = BetTypeUnanimousDecision
		}
	}
	return c
}
