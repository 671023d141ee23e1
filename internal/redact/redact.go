// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. This package helps prevent
// the accidental leakage of credentials, connection strings, file paths, and other
// sensitive data that might be included in error messages.
package redact

import (
	"regexp"
	"sync"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

// Precompiled regex patterns
var (
	// Database connection strings
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|mysql|mongodb|db|database|connection)://[^@]+@`)

	// Credentials and tokens
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`)
	apiKeyRegex   = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)
	awsKeyRegex = regexp.MustCompile(`(AKIA|AccessKey(Id)?)([^a-zA-Z0-9])?[A-Z0-9]{8,}`)
	// JWT token pattern - matches the standard three-part base64url-encoded JWT token format
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// File paths
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
	winPathRegex  = regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`)

	// Stack trace fragments
	stackTraceRegex = regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`)

	// Email addresses
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

	// SQL statements are redacted structurally rather than wholesale: the
	// statement shape survives for debugging while the selected columns,
	// predicates, and literal values are dropped. Each DML form keeps its
	// own recognizable skeleton.
	sqlSelectRegex = regexp.MustCompile(`(?i)SELECT\s+.*\s+FROM\s+.*`)
	sqlInsertRegex = regexp.MustCompile(`(?i)(INSERT\s+INTO\s+\S+\s*(?:\([^)]*\))?\s*VALUES)\s*\(.*\)`)
	sqlUpdateRegex = regexp.MustCompile(`(?i)(UPDATE\s+\S+\s+SET)\s+.*`)
	sqlDeleteRegex = regexp.MustCompile(`(?i)(DELETE\s+FROM\s+\S+)\s+WHERE\s+.*`)
	// Remaining statement kinds fall back to full redaction
	sqlDDLRegex = regexp.MustCompile(
		`(?i)(CREATE|ALTER|DROP|GRANT|TRUNCATE)\s+(?:TABLE|DATABASE|SCHEMA|VIEW|INDEX)\s+\S.*`,
	)

	// UUIDs identify rows and users; leaking one links a log line to a
	// person's data
	uuidRegex = regexp.MustCompile(
		`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`,
	)

	// Additional sensitive patterns
	lineNumberRegex  = regexp.MustCompile(`(?:at )?line ?\d+`)
	syntaxErrorRegex = regexp.MustCompile(`(?i)syntax error|syntax problem|parse error`)
	hostPortRegex    = regexp.MustCompile(
		`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`,
	)
	fileErrorRegex = regexp.MustCompile(
		`(?i)(?:no such file|file not found|can't open|cannot open|file error)`,
	)

	mu sync.RWMutex
)

// redaction pairs a pattern with its replacement. Replacements may use
// capture-group references to preserve non-sensitive structure.
type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

// redactions are applied in order. Credential-shaped patterns run before
// the structural SQL patterns so a password inside a query is still caught
// even if the statement pattern misses, and the SQL patterns run before the
// bare-identifier ones so a redacted statement is not re-matched.
var redactions = []redaction{
	{dbConnRegex, RedactedCredentialPlaceholder},
	{passwordRegex, RedactedCredentialPlaceholder},
	{apiKeyRegex, RedactedKeyPlaceholder},
	{awsKeyRegex, RedactedKeyPlaceholder},
	{jwtTokenRegex, "[REDACTED_JWT]"},
	{unixPathRegex, RedactedPathPlaceholder},
	{winPathRegex, RedactedPathPlaceholder},
	{stackTraceRegex, "[STACK_TRACE_REDACTED]"},
	{emailRegex, "[REDACTED_EMAIL]"},
	{sqlSelectRegex, "SELECT FROM... [SQL_VALUES_REDACTED]"},
	{sqlInsertRegex, "${1} [SQL_VALUES_REDACTED]"},
	{sqlUpdateRegex, "${1} [SQL_VALUES_REDACTED]"},
	{sqlDeleteRegex, "${1} [SQL_WHERE_REDACTED]"},
	{sqlDDLRegex, "[REDACTED_SQL]"},
	{uuidRegex, "[REDACTED_UUID]"},
	{lineNumberRegex, "[REDACTED_LINE_NUMBER]"},
	{syntaxErrorRegex, "[REDACTED_SYNTAX_ERROR]"},
	{hostPortRegex, "[REDACTED_HOST]"},
	{fileErrorRegex, "[REDACTED_FILE_ERROR]"},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	mu.RLock()
	defer mu.RUnlock()

	result := input
	for _, r := range redactions {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
