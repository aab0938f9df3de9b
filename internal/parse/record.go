// Package parse turns the free-text fields of schedule and results feeds into
// structured values. Nothing here fails: unparsable input degrades to defaults.
package parse

import (
	"strconv"
	"strings"

	"github.com/fightcard/platform/internal/domain"
)

// ParseRecord parses a "wins-losses-draws" record string. Missing or non-numeric
// segments count as zero. Negative numbers are passed through unchanged.
func ParseRecord(record string) domain.Tally {
	var t domain.Tally
	if strings.TrimSpace(record) == "" {
		return t
	}

	parts := strings.Split(record, "-")
	fields := []*int{&t.Wins, &t.Losses, &t.Draws}
	for i, p := range parts {
		if i >= len(fields) {
			break
		}
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		*fields[i] = n
	}
	return t
}
