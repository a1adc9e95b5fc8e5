// Package journal persists a history of publishing runs.
//
// The FileRepository keeps the most recent runs as JSON on disk, so that an
// operator can see which modules, distribution sets and rollouts a run created
// even when it aborted halfway.
package journal
