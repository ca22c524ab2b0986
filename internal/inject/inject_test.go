package inject

import "testing"

func TestClampTaps(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 0},
		{0, 0},
		{7, 7},
		{MaxTaps, MaxTaps},
		{MaxTaps + 1, MaxTaps},
	}
	for _, tt := range tests {
		if got := ClampTaps(tt.in); got != tt.want {
			t.Errorf("ClampTaps(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNextLayout(t *testing.T) {
	const (
		enUS uintptr = 0x04090409
		ruRU uintptr = 0x04190419
		deDE uintptr = 0x04070407
	)
	tests := []struct {
		name    string
		current uintptr
		list    []uintptr
		want    uintptr
		wantOK  bool
	}{
		{name: "empty list", current: enUS, list: nil, wantOK: false},
		{name: "en flips to ru", current: enUS, list: []uintptr{enUS, deDE, ruRU}, want: ruRU, wantOK: true},
		{name: "ru flips to en", current: ruRU, list: []uintptr{deDE, ruRU, enUS}, want: enUS, wantOK: true},
		{name: "other cycles", current: deDE, list: []uintptr{enUS, deDE, ruRU}, want: ruRU, wantOK: true},
		{name: "cycle wraps", current: deDE, list: []uintptr{enUS, deDE}, want: enUS, wantOK: true},
		{name: "en without ru cycles", current: enUS, list: []uintptr{enUS, deDE}, want: deDE, wantOK: true},
		{name: "unknown current picks first", current: 0x1234, list: []uintptr{deDE, enUS}, want: deDE, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := nextLayout(tt.current, tt.list)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("nextLayout = (%#x, %v), want (%#x, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
