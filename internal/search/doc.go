// Package search queries web search providers for the research pipeline.
//
// Every provider implements Provider and caps its results at the requested
// maximum. Tavily is the primary provider. DuckDuckGo needs no API key and
// serves as the fallback. Fallback joins the two and stops calling a
// failing primary for a while by means of a circuit breaker.
package search
