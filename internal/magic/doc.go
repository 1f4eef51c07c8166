// Package magic holds the identifier buffers that the packer patches into a
// compiled runner: the build UID that keys the cache entry and the file name of
// the target artifact inside the payload. Each buffer is a fixed-size run of
// text bytes followed by a NUL terminator; the runner finds the terminator at
// startup and never mutates the buffers afterwards.
package magic
