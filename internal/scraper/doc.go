// Package scraper fetches a single web page and reduces it to the text
// handed to the summarizer.
//
// HTML is cleaned with goquery: navigation, scripts and other chrome are
// removed and the remaining content elements are joined into plain text.
// The cleaned main content is also converted to markdown with
// html-to-markdown. Plain text responses pass through unchanged.
//
// Bodies are read through an io.LimitReader so a large page cannot exhaust
// memory, and the extracted text is truncated to a character limit before
// it reaches the model.
package scraper
