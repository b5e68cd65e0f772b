// Package resource enforces process-wide limits on graph construction and
// image transfer: a memory budget for builder scratch space, a cap on
// concurrently running builds, and a byte rate for image reads and writes.
// A nil *Controller imposes no limits.
package resource
