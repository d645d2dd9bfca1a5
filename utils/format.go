package utils

import "strconv"

// FormatPrize renders a prize amount the way the wheel labels and the bot
// notification show it: thousands separated by non-breaking spaces, ruble
// sign appended, e.g. 15000 -> "15 000 ₽". Server and widget share this so
// the rendered wheel always matches the notification text.
func FormatPrize(amount int) string {
	return groupThousands(amount) + " ₽"
}

// groupThousands inserts a non-breaking space every three digits.
func groupThousands(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.Itoa(n)
	if len(s) > 3 {
		var out []byte
		lead := len(s) % 3
		if lead > 0 {
			out = append(out, s[:lead]...)
		}
		for i := lead; i < len(s); i += 3 {
			if len(out) > 0 {
				out = append(out, " "...)
			}
			out = append(out, s[i:i+3]...)
		}
		s = string(out)
	}
	if neg {
		s = "-" + s
	}
	return s
}
