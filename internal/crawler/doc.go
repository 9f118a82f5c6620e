// Package crawler orchestrates the file pipeline: discover files under a
// git root, split each into chunks, and annotate every chunk with location
// and symbol context.
//
// Discovery enforces two rules up front. The root must be a git repository
// (anything else is refused with ErrNotGitRepo), and files inside hidden
// directories or with unsupported extensions are logged and skipped.
// Processing runs on a bounded worker pool; a failure in one file is
// recorded in the run statistics and never aborts the others.
package crawler
