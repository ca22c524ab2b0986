package inject

import "github.com/TanaroSch/layout-switcher/internal/layout"

// nextLayout prefers the opposite of a Russian or English current layout and
// otherwise cycles to the next installed one.
func nextLayout(current uintptr, list []uintptr) (uintptr, bool) {
	if len(list) == 0 {
		return 0, false
	}
	if want := layout.TagFromHKL(current).Flip(); want.Known() {
		for _, h := range list {
			if layout.TagFromHKL(h) == want {
				return h, true
			}
		}
	}
	for i, h := range list {
		if h == current {
			return list[(i+1)%len(list)], true
		}
	}
	return list[0], true
}
