// Package llm talks to chat-completion language models.
//
// Client is the narrow interface the pipeline depends on. OpenAI,
// Anthropic and Gemini implement it with their official Go SDKs (go-openai
// for OpenAI-compatible endpoints). Agent layers the research roles on top:
// a smart model for queries and reports, a fast model for page summaries,
// per-call timeouts, and degrade-to-empty error handling.
package llm
