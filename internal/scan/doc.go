// Package scan finds media files and analyzes them in the background.
//
// CollectFiles walks a directory tree for files matching the supported
// extension list. Scanner fans the resulting paths out to worker
// goroutines that run the inspector and emit media.Details on a result
// channel; a file the inspector fails on becomes a processing-error
// result rather than aborting the batch. Both the walk and the workers
// stop on context cancellation.
package scan
