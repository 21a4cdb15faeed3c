// Package detect turns page snapshots into SEO issues.
//
// A Detector holds an ordered list of independent rules. Each rule looks at
// one condition and reports at most one finding per page; the detector
// attaches catalog metadata, drops duplicate issue types, and finally adds
// the cross-cutting "high traffic page with technical issues" finding.
//
// Rules only read the sources they need. When a source is missing (no
// crawl, no search metrics, no Core Web Vitals) the rule is skipped, so a
// failed collector never hides issues found by the others.
package detect
