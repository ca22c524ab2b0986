//go:build linux

package hotkey

import (
	"reflect"
	"testing"

	"golang.design/x/hotkey"
)

func TestExpandModifiersAddsLockVariants(t *testing.T) {
	tests := []struct {
		name string
		in   []hotkey.Modifier
		want [][]hotkey.Modifier
	}{
		{
			name: "ctrl shift",
			in:   []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift},
			want: [][]hotkey.Modifier{
				{hotkey.ModCtrl, hotkey.ModShift},
				{hotkey.ModCtrl, hotkey.ModShift, x11NumLock},
				{hotkey.ModCtrl, hotkey.ModShift, x11LockMask},
				{hotkey.ModCtrl, hotkey.ModShift, x11NumLock, x11LockMask},
			},
		},
		{
			name: "numlock already present",
			in:   []hotkey.Modifier{hotkey.ModCtrl, x11NumLock},
			want: [][]hotkey.Modifier{
				{hotkey.ModCtrl, x11NumLock},
				{hotkey.ModCtrl, x11NumLock, x11LockMask},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandModifiers(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expandModifiers() = %v, want %v", got, tt.want)
			}
			if got[0][0] != tt.in[0] || len(got[0]) != len(tt.in) {
				t.Fatalf("first variant must be the chord itself, got %v", got[0])
			}
		})
	}
}
