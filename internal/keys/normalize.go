package keys

// ScanMapper resolves a scan code to a left/right specific virtual key
// (MapVirtualKeyW with MAPVK_VSC_TO_VK_EX on Windows). It returns 0 when the
// scan code is unknown.
type ScanMapper func(scan uint32) uint32

// Normalize turns the generic Shift/Ctrl/Alt codes into their left/right
// variants. Shift is resolved from the scan code, Ctrl and Alt from the
// extended-key flag. Every other code is returned unchanged.
func Normalize(ev Event, mapScan ScanMapper) uint32 {
	switch ev.VK {
	case VKShift:
		if mapScan != nil {
			if vk := mapScan(ev.Scan); vk != 0 {
				return vk
			}
		}
		return shiftFromScan(ev.Scan)
	case VKControl:
		if ev.Extended() {
			return VKRControl
		}
		return VKLControl
	case VKMenu:
		if ev.Extended() {
			return VKRMenu
		}
		return VKLMenu
	}
	return ev.VK
}

// shiftFromScan covers the two set-1 scan codes used by every PC keyboard.
// Anything else is taken as the left Shift, like Ctrl and Alt without the
// extended flag.
func shiftFromScan(scan uint32) uint32 {
	switch scan {
	case 0x2A:
		return VKLShift
	case 0x36:
		return VKRShift
	}
	return VKLShift
}
