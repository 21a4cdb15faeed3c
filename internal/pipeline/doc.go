// Package pipeline collects the per-page data sources before an audit.
//
// Each data source (crawl, search console, PageSpeed) is a Step that fills one
// field of a model.Page. Sources fail independently: a failed step is recorded
// in the Result and the page keeps a nil field for it, which detection treats
// as "no data". BatchProcessor runs the pipeline over many URLs with bounded
// concurrency using errgroup.
package pipeline
