package utils

import "testing"

func TestPhoneKey(t *testing.T) {
	cases := []struct {
		countryCode string
		number      string
		want        string
	}{
		{"+1", "555-123-4567", "15551234567"},
		{"1", "5551234567", "15551234567"},
		{"+91", "98765 43210", "919876543210"},
		{"+44", "(020) 7946 0958", "4402079460958"},
		{"", "", ""},
	}

	for _, tc := range cases {
		if got := PhoneKey(tc.countryCode, tc.number); got != tc.want {
			t.Errorf("PhoneKey(%q, %q) = %q, want %q", tc.countryCode, tc.number, got, tc.want)
		}
	}
}

func TestDisplayPhone(t *testing.T) {
	if got := DisplayPhone("15551234567"); got != "+15551234567" {
		t.Errorf("DisplayPhone = %q", got)
	}
	if got := DisplayPhone(""); got != "" {
		t.Errorf("DisplayPhone(\"\") = %q, want empty", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"15551234567":    "+15551234567",
		"+15551234567":   "+15551234567",
		" +15551234567 ": "+15551234567",
		"":               "",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripPlus(t *testing.T) {
	if got := StripPlus("+15551234567"); got != "15551234567" {
		t.Errorf("StripPlus = %q", got)
	}
	if got := StripPlus("15551234567"); got != "15551234567" {
		t.Errorf("StripPlus without plus = %q", got)
	}
}
