package mmap

import "errors"

// AccessPattern is a kernel hint about upcoming reads.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	AccessSequential
	AccessRandom
	AccessWillNeed
	AccessDontNeed
)

// String implements fmt.Stringer.
func (p AccessPattern) String() string {
	switch p {
	case AccessSequential:
		return "sequential"
	case AccessRandom:
		return "random"
	case AccessWillNeed:
		return "willneed"
	case AccessDontNeed:
		return "dontneed"
	default:
		return "default"
	}
}

// ParseAccessPattern is the inverse of String. Unknown names map to AccessDefault.
func ParseAccessPattern(s string) AccessPattern {
	switch s {
	case "sequential":
		return AccessSequential
	case "random":
		return AccessRandom
	case "willneed":
		return AccessWillNeed
	case "dontneed":
		return AccessDontNeed
	default:
		return AccessDefault
	}
}

var (
	ErrClosed        = errors.New("mmap: mapping is closed")
	ErrInvalidSize   = errors.New("mmap: invalid file size")
	ErrOutOfBounds   = errors.New("mmap: out of bounds")
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
