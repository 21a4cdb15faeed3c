// Package audit turns collected page data into a ranked, team-grouped report.
//
// The Aggregator is the single entry point of the scoring pipeline:
//
//  1. Records without a URL, and repeated URLs, are skipped and reported.
//  2. Every page is classified and duplicate titles and descriptions are marked.
//  3. Detection, scoring and routing run per page with bounded concurrency.
//  4. Issues seen in the previous audit are marked existing.
//  5. Issues are ranked by impact, then summarized per team and severity.
//
// Given the same pages and scoring tables, two runs produce the same issues
// in the same order with the same scores. Only timestamps and the report ID differ.
package audit
