package view

import (
	"strconv"
	"strings"
	"time"
)

// Money formats a decimal amount in rupees with Indian digit grouping.
// E.g., "1234567.5" -> "₹12,34,567.50". Unparseable input is returned as is.
func Money(amount string) string {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return ""
	}
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return amount
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	s := strconv.FormatFloat(f, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	return sign + "₹" + groupIndian(whole) + "." + frac
}

// groupIndian inserts separators as 12,34,56,789: the last three digits,
// then groups of two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

// Date renders backend timestamps ("2025-01-31 10:00:00", RFC 3339 or a
// plain date) as "31 Jan 2025".
func Date(v string) string {
	v = strings.TrimSpace(v)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("02 Jan 2006")
		}
	}
	return v
}

// Humanize turns a key like "customer.phone_number" into "Customer phone number".
func Humanize(key string) string {
	key = strings.NewReplacer(".", " ", "_", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")
	if key == "" {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

// Truncate shortens s to n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
