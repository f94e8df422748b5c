// Package pipeline runs a research question through its steps in order.
//
// A research run is a sequence of Steps that each read and extend the same
// model.Research:
//
//	agent -> cache -> queries -> search -> report [-> concepts -> lessons]
//
// The search step fans out to every new URL of a query, scraping and
// summarizing pages concurrently with errgroup, and fans in before the next
// query. Failures of search, scrape, summarize and report degrade to empty
// results recorded in Research.Errors. Only cancellation stops a run.
//
// BatchProcessor runs several questions with bounded concurrency, each with
// a fresh Pipeline from a factory.
package pipeline
