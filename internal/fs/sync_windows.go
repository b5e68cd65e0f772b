//go:build windows

package fs

// Directory handles cannot be flushed on Windows.
func isUnsupported(error) bool { return true }
