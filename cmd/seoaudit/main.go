// Package main provides the entry point for the seoaudit CLI.
//
// seoaudit crawls regional web properties, detects SEO issues, ranks them by
// business impact and routes them to the team that owns the fix.
//
// Usage:
//
//	seoaudit audit https://example.com/
//	seoaudit audit --site example.com --discover --gsc export.csv
//	seoaudit compare example.com
//
// See --help for all available options.
package main

func main() {
	Execute()
}
