// Package report renders finished research runs and lays them out on disk.
//
// Writers render a model.Research in one format each:
//   - MarkdownWriter: the report with metadata, sources and a source chart
//   - TextWriter: plain text for terminals and simple tooling
//   - JSONWriter: the full research state for other programs
//
// Writers implement the Writer interface, so they can be composed with
// MultiWriter. Store owns the output directory layout: one directory per
// research holding the report files, the per-query summaries that serve as
// a file cache, and optional lesson files.
package report
