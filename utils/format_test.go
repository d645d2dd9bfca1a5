package utils

import "testing"

func TestFormatPrize(t *testing.T) {
	cases := []struct {
		amount int
		want   string
	}{
		{5000, "5 000 ₽"},
		{10000, "10 000 ₽"},
		{999, "999 ₽"},
		{1000000, "1 000 000 ₽"},
		{0, "0 ₽"},
	}
	for _, c := range cases {
		if got := FormatPrize(c.amount); got != c.want {
			t.Errorf("FormatPrize(%d) = %q, want %q", c.amount, got, c.want)
		}
	}
}
