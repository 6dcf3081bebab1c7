// Package main provides readinglogctl, the administrative command line for a
// ReadingLog data directory.
//
// Usage:
//
//	readinglogctl seed --file catalog.json
//	readinglogctl user list
//	readinglogctl user set-role ada@example.com moderator
//	readinglogctl review pending
//	readinglogctl review approve <review-id> --as admin@example.com
package main

func main() {
	Execute()
}
