// Package cache owns the on-disk cache of extracted packages. It derives the
// cache key from the running executable and its build UID, resolves the entry
// directory under <root>/packages/<key>, and decides on every run whether that
// entry is Absent, Stale or Fresh by comparing the directory's mtime with the
// executable's mtime. Absent and Stale entries are rebuilt under a per-key
// advisory lock: the extractor writes into a private temp directory which is
// renamed into place only on success, so concurrent launches never observe a
// half-written entry.
package cache
