// Package log builds slog loggers that never print credentials.
//
// SecureHandler masks attribute values by key (authorization, token,
// api_key, ...), by value shape (bearer tokens, Google API keys, Atlassian
// tokens) and inside URLs, where secret query parameters such as "key" are
// replaced. Console output goes through tint; JSON output through the
// standard JSON handler.
//
//	logger := log.NewLogger(os.Stderr, log.Options{Verbose: true})
//	logger.Debug("request", "url", "https://www.googleapis.com/...?url=x&key=AIza...")
//	// url=https://www.googleapis.com/...?key=***REDACTED***&url=x
package log
