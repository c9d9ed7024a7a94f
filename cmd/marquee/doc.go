// Command marquee is the CLI and API server for the movie recommendation and
// review-sentiment backend.
//
// Results are printed to stdout (tables, or JSON with --json); logs go to
// stderr and the log file.
package main
