// Package payload reads and writes the archive appended to a packaged runner.
//
// A packaged executable is laid out as
//
//	<runner bytes> <gzip(tar(input dir))> <footer>
//
// where the 16-byte footer holds the archive length as a little-endian uint64
// followed by the magic "WARPPAK1". The runner locates the archive from the end
// of its own file, so the runner bytes can be any size.
package payload
