// Package packer turns a compiled runner plus an application directory into a
// single self-extracting executable. It rewrites the runner's identifier
// buffers in place (build UID and target file name) and appends the payload
// produced by package payload.
package packer
