// Package log provides slog-based logging that keeps credentials out of
// log output.
//
// The SecureHandler wraps any slog.Handler and masks:
//   - attributes whose key names a credential (api_key, authorization, token)
//   - values shaped like provider keys (OpenAI sk-..., Anthropic sk-ant-...,
//     Tavily tvly-..., Google AIza...) or bearer and JWT tokens
//   - credential query parameters inside URLs, leaving the rest of the URL
//
// Even in verbose mode, prompts and URLs are logged but keys are not.
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	slog.SetDefault(logger)
package log
