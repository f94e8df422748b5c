// Package main is the entry point for the researcher CLI.
//
// researcher answers a natural-language question with a written report.
// It asks an LLM for search queries, searches the web, scrapes and
// summarizes every result, and writes a report from the summaries using
// one of several report-type prompts.
//
// Usage:
//
//	researcher research "What is the state of solid-state batteries?"
//	researcher research --report-type resource_report --format md,json "Go generics"
//	researcher history list
//	researcher init
//
// For more information, run: researcher --help
package main

func main() {
	Execute()
}
