// Package fs abstracts the few filesystem calls the image writer and the
// catalog cache make, so tests can inject write, sync, close and rename
// failures through FaultyFS.
//
// Production code uses fs.Default:
//
//	f, err := fs.Default.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
//
// Calls take no context; local file operations are not interruptible.
package fs
