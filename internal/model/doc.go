// Package model defines the data structures shared by the research
// pipeline: the per-question Research state, the VisitedSet used to
// deduplicate source URLs, search results, and scraped pages.
//
// The models are serializable to JSON for report output and database
// storage.
package model
