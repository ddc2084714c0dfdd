package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

type heuristic struct {
	name    string
	extract func(text string) (int, bool)
}

// heuristics are applied in order; the first one that finds a score wins.
// They can disagree on the same document, which is accepted.
var heuristics = []heuristic{
	{name: "percentage", extract: percentageScore},
	{name: "ratio", extract: ratioScore},
	{name: "criteria_table", extract: tableScore},
}

var (
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s?%`)
	ratioPattern   = regexp.MustCompile(`(?:^|[^\d/.])(\d+)\s*/\s*(\d+)(?:$|[^\d/])`)
)

// ExtractScore returns a match score in [0,100] or false when no heuristic matches.
func ExtractScore(text string) (int, bool) {
	score, _, ok := extractScore(text)
	return score, ok
}

func extractScore(text string) (int, string, bool) {
	for _, h := range heuristics {
		if score, ok := h.extract(text); ok {
			return score, h.name, true
		}
	}
	return 0, "", false
}

func percentageScore(text string) (int, bool) {
	for _, m := range percentPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v > 100 {
			continue
		}
		return int(math.Round(v)), true
	}
	return 0, false
}

func ratioScore(text string) (int, bool) {
	for _, m := range ratioPattern.FindAllStringSubmatch(text, -1) {
		num, err1 := strconv.Atoi(m[1])
		den, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || den == 0 || num > den {
			continue
		}
		return int(math.Round(100 * float64(num) / float64(den))), true
	}
	return 0, false
}

// tableScore averages 1-5 criterion scores from rows shaped "<label> | <digit> | ...".
func tableScore(text string) (int, bool) {
	sum, count := 0, 0
	for _, line := range strings.Split(text, "\n") {
		if digit, ok := tableRowScore(line); ok {
			sum += digit
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	avg := float64(sum) / float64(count)
	return min(int(math.Round(100*avg/5)), 100), true
}

func tableRowScore(line string) (int, bool) {
	line = strings.TrimPrefix(strings.TrimSpace(line), "|")
	fields := strings.Split(line, "|")
	if len(fields) < 3 || strings.TrimSpace(fields[0]) == "" {
		return 0, false
	}
	v := strings.TrimSpace(fields[1])
	if len(v) != 1 || v[0] < '1' || v[0] > '9' {
		return 0, false
	}
	return int(v[0] - '0'), true
}
