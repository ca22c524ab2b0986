//go:build windows

package ui

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const swShowNormal = 1

var (
	shell32           = windows.NewLazySystemDLL("shell32.dll")
	procShellExecuteW = shell32.NewProc("ShellExecuteW")
)

// ShellExecute performs verb on file. Return values up to 32 are error codes.
func ShellExecute(hwnd uintptr, verb, file, params, dir string, showCmd int32) error {
	lpVerb, err := windows.UTF16PtrFromString(verb)
	if err != nil {
		return fmt.Errorf("failed to convert verb to UTF16Ptr: %w", err)
	}
	lpFile, err := windows.UTF16PtrFromString(file)
	if err != nil {
		return fmt.Errorf("failed to convert file path to UTF16Ptr: %w", err)
	}
	var lpParams, lpDir *uint16
	if params != "" {
		if lpParams, err = windows.UTF16PtrFromString(params); err != nil {
			return fmt.Errorf("failed to convert params to UTF16Ptr: %w", err)
		}
	}
	if dir != "" {
		if lpDir, err = windows.UTF16PtrFromString(dir); err != nil {
			return fmt.Errorf("failed to convert dir to UTF16Ptr: %w", err)
		}
	}

	ret, _, callErr := procShellExecuteW.Call(
		hwnd,
		uintptr(unsafe.Pointer(lpVerb)),
		uintptr(unsafe.Pointer(lpFile)),
		uintptr(unsafe.Pointer(lpParams)),
		uintptr(unsafe.Pointer(lpDir)),
		uintptr(showCmd),
	)
	if ret > 32 {
		return nil
	}
	if callErr != nil && callErr != windows.ERROR_SUCCESS {
		return fmt.Errorf("ShellExecuteW failed with return code %d: %w", ret, callErr)
	}
	return fmt.Errorf("ShellExecuteW failed with return code %d", ret)
}
