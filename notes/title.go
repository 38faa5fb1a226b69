// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notes

import (
	"regexp"
	"strconv"
	"strings"
)

// Status labels as shown on the board
const (
	StatusUnsold = "流拍"
	StatusSold   = "成交"
)

// normSep joins the parts of a normalized title
const normSep = "｜"

var (
	volPattern      = regexp.MustCompile(`(?i)vol\.\s*\d+`)
	unsoldPattern   = regexp.MustCompile(`(?i)流拍|Unsold`)
	soldPattern     = regexp.MustCompile(`(?i)售出|Sold`)
	subjectPattern  = regexp.MustCompile(`：([^，,]+)`)
	houseEnPattern  = regexp.MustCompile(`(Sotheby’s|Sotheby's|Christie’s|Christie's)\s*([A-Z]{2})?\s*(\d{4})`)
	houseZhPattern  = regexp.MustCompile(`(蘇富比|佳士得)([^0-9]{0,8})?(\d{4})`)
	usdWanPattern   = regexp.MustCompile(`(?i)([0-9.]+)\s*萬\s*美元`)
	hkdWanPattern   = regexp.MustCompile(`(?i)([0-9.]+)\s*萬\s*港元`)
	gbpWanPattern   = regexp.MustCompile(`(?i)([0-9.]+)\s*萬\s*英鎊`)
	usdMPattern     = regexp.MustCompile(`(?i)USD\s*([0-9.]+)\s*m`)
	usdPlainPattern = regexp.MustCompile(`(?i)([0-9,]+)\s*USD`)
	gbpPlainPattern = regexp.MustCompile(`(?i)([0-9,]+)\s*GBP`)
)

// Title is what can be recovered from an auction post title
type Title struct {
	Norm   string
	House  string
	Year   string
	Status string
	Price  string
}

// ParseTitle pulls volume, subject, house, year, result and hammer price
// out of a free-form post title. Norm is only set when at least two of
// those parts were found.
func ParseTitle(t string) Title {
	var out Title
	if t == "" {
		return out
	}

	vol := volPattern.FindString(t)

	// "Unsold" contains "sold", so the unsold check goes first
	switch {
	case unsoldPattern.MatchString(t):
		out.Status = StatusUnsold
	case soldPattern.MatchString(t):
		out.Status = StatusSold
	}

	var subject string
	if m := subjectPattern.FindStringSubmatch(t); m != nil {
		subject = strings.TrimSpace(m[1])
	}

	out.House, out.Year = parseHouse(t)
	out.Price = parsePrice(t)

	var parts []string
	if vol != "" {
		parts = append(parts, vol)
	}
	if subject != "" {
		parts = append(parts, subject)
	}
	switch {
	case out.House != "" && out.Year != "":
		parts = append(parts, out.House+" "+out.Year)
	case out.House != "":
		parts = append(parts, out.House)
	}
	if out.Price != "" {
		parts = append(parts, out.Price)
	}

	if len(parts) >= 2 {
		out.Norm = strings.Join(parts, normSep)
	}
	return out
}

func parseHouse(t string) (house, year string) {
	if m := houseEnPattern.FindStringSubmatch(t); m != nil {
		brand := strings.NewReplacer("Sotheby's", "Sotheby’s", "Christie's", "Christie’s").Replace(m[1])
		if m[2] != "" {
			brand += " " + m[2]
		}
		return brand, m[3]
	}

	m := houseZhPattern.FindStringSubmatch(t)
	if m == nil {
		return "", ""
	}
	house = "Christie’s"
	if m[1] == "蘇富比" {
		house = "Sotheby’s"
	}
	switch {
	case strings.Contains(t, "紐約"):
		house += " NY"
	case strings.Contains(t, "倫敦"):
		house += " London"
	case strings.Contains(t, "香港"):
		house += " HK"
	}
	return house, m[3]
}

// parsePrice normalizes prices quoted in 萬 (ten thousands) to millions
// with one decimal. Otherwise the last matching plain form wins.
func parsePrice(t string) string {
	wan := []struct {
		currency string
		pattern  *regexp.Regexp
	}{
		{"USD", usdWanPattern},
		{"HKD", hkdWanPattern},
		{"GBP", gbpWanPattern},
	}
	for _, w := range wan {
		m := w.pattern.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return w.currency + " " + strconv.FormatFloat(n/100, 'f', 1, 64) + "m"
	}

	if m := usdMPattern.FindStringSubmatch(t); m != nil {
		return "USD " + m[1] + "m"
	}
	if m := usdPlainPattern.FindStringSubmatch(t); m != nil {
		return "USD " + m[1]
	}
	if m := gbpPlainPattern.FindStringSubmatch(t); m != nil {
		return "GBP " + m[1]
	}
	return ""
}

// CleanTitle drops the " | Site Name" suffix
func CleanTitle(t string) string {
	before, _, _ := strings.Cut(t, "|")
	return strings.TrimSpace(before)
}
