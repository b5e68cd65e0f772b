package persistence

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"
)

var (
	ErrUnsupportedArchitecture = errors.New("unsupported architecture: only amd64 and arm64 are supported")
	ErrBigEndian               = errors.New("big-endian systems are not supported")
	ErrUnalignedAccess         = errors.New("unaligned memory access detected")
)

func init() {
	if err := validatePlatform(); err != nil {
		panic(fmt.Sprintf("csrgo/persistence: %v", err))
	}
}

func validatePlatform() error {
	if arch := runtime.GOARCH; arch != "amd64" && arch != "arm64" {
		return fmt.Errorf("%w: %s", ErrUnsupportedArchitecture, arch)
	}
	if !isLittleEndian() {
		return ErrBigEndian
	}
	return nil
}

func isLittleEndian() bool {
	var probe uint16 = 0x0001
	return *(*byte)(unsafe.Pointer(&probe)) == 1
}

func isWordAligned(b []byte) bool {
	return len(b) == 0 || uintptr(unsafe.Pointer(&b[0]))%WordSize == 0
}

func validateUint64SliceAlignment(s []uint64) error {
	if len(s) == 0 {
		return nil
	}
	if ptr := uintptr(unsafe.Pointer(&s[0])); ptr%WordSize != 0 {
		return fmt.Errorf("%w: uint64 slice at address 0x%x", ErrUnalignedAccess, ptr)
	}
	return nil
}

// wordBytes reinterprets s as its little-endian byte image.
func wordBytes(s []uint64) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*WordSize)
}

// PlatformInfo describes the running platform.
func PlatformInfo() string {
	endian := "little-endian"
	if !isLittleEndian() {
		endian = "big-endian"
	}
	return fmt.Sprintf("GOOS=%s GOARCH=%s endianness=%s", runtime.GOOS, runtime.GOARCH, endian)
}
