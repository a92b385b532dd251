// Package hardlink mirrors plugin configuration files from a source tree
// into a destination tree as hard links.
//
// A file qualifies when it is
//
//   - named like the marker file, found by a walk that prunes ignored
//     directory names before descending,
//   - matched by one of the link patterns, unless its path relative to the
//     source root contains an ignored name as a substring, or
//   - named exactly like one of the extra files, with no ignore filtering.
//
// The two ignore checks are not interchangeable and are kept distinct.
//
// A destination path is only ever created. If anything already exists
// there, whether a correct link or a stale copy, it is left alone and
// reported as skipped, which makes repeated runs idempotent.
package hardlink
