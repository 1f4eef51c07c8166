// Package launch drives one run of the runner: decode identifiers, resolve the
// cache entry, make sure it is fresh, then execute the target and report its
// exit code. It never calls os.Exit itself; main does that once every deferred
// cleanup has run.
package launch
