package settings

import "testing"

func TestOpenDefaultsTrue(t *testing.T) {
	truev, falsev := true, false
	tests := []struct {
		name string
		s    AppSettings
		want bool
	}{
		{"absent flag", AppSettings{}, true},
		{"explicit true", AppSettings{ReservationsOpen: &truev}, true},
		{"explicit false", AppSettings{ReservationsOpen: &falsev}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Open(); got != tt.want {
				t.Errorf("Open() = %v, want %v", got, tt.want)
			}
		})
	}
}
