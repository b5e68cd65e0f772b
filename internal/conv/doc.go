// Package conv provides checked integer conversions for values read from
// untrusted image headers (vertex and edge counts, byte lengths).
package conv
