// Package watch reports changes of individual files using fsnotify.
//
// Editors often save by writing a temporary file and renaming it over the
// original, which ends a watch on the file itself. A Watcher therefore
// watches the parent directory and filters events by file name. Bursts of
// operations on one file are coalesced into a single Event after a quiet
// period.
package watch
