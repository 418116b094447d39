package moneyhero

import "testing"

func TestMoney_String(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{M(1234.5, "USD"), "$1,234.50"},
		{M(0, "USD"), "$0.00"},
		{M(D("99.999"), "USD"), "$100.00"},
		{M(-20, "USD"), "-$20.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.m.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMoney_SignedString(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{M(10, "USD"), "+$10.00"},
		{M(0, "USD"), "-"},
		{M(-10, "USD"), "-$10.00"},
	}
	for _, tt := range tests {
		if got := tt.m.SignedString(); got != tt.want {
			t.Errorf("SignedString(%v) = %q, want %q", tt.m.Decimal(), got, tt.want)
		}
	}
}
