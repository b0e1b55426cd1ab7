// Package security provides input validation for the catalog admin panel
package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ValidIdentifierRegex matches valid SQL identifiers
// Only allows lowercase letters, digits, and underscores, starting with a letter or underscore
var ValidIdentifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// LikeEscape is the escape character used in LIKE patterns.
// A backslash would need doubling in MySQL string literals.
const LikeEscape = '!'

// MaxRecordIDLength bounds record ids taken from URLs
const MaxRecordIDLength = 64

// ValidateIdentifier checks if a string is a valid SQL identifier
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > 63 {
		return fmt.Errorf("identifier too long (max 63 characters)")
	}
	if !ValidIdentifierRegex.MatchString(name) {
		return fmt.Errorf("invalid identifier: must contain only lowercase letters, numbers, and underscores, starting with a letter or underscore")
	}
	if isReservedWord(name) {
		return fmt.Errorf("'%s' is a reserved SQL keyword", name)
	}
	return nil
}

// ValidateRecordID checks a catalog record id before it is placed in a request path
func ValidateRecordID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("record id cannot be empty")
	}
	if len(id) > MaxRecordIDLength {
		return fmt.Errorf("record id too long (max %d characters)", MaxRecordIDLength)
	}
	// dot segments survive path escaping and would move up the collection path
	if id == "." || id == ".." {
		return fmt.Errorf("record id cannot be a dot segment")
	}
	for _, r := range id {
		if unicode.IsControl(r) || r == '/' {
			return fmt.Errorf("record id contains invalid characters")
		}
	}
	return nil
}

// EscapeLikePattern escapes special characters in LIKE patterns
func EscapeLikePattern(pattern string) string {
	esc := string(LikeEscape)
	pattern = strings.ReplaceAll(pattern, esc, esc+esc)
	pattern = strings.ReplaceAll(pattern, `%`, esc+`%`)
	pattern = strings.ReplaceAll(pattern, `_`, esc+`_`)
	return pattern
}

// BuildMultiSearchCondition builds a case-insensitive condition matching
// searchTerm against any of columns. Invalid column names are skipped.
// Returns the condition string with ? placeholders and its parameters.
func BuildMultiSearchCondition(columns []string, searchTerm string) (string, []interface{}) {
	searchTerm = strings.TrimSpace(searchTerm)
	if len(columns) == 0 || searchTerm == "" {
		return "", nil
	}

	param := "%" + EscapeLikePattern(strings.ToLower(searchTerm)) + "%"

	conditions := make([]string, 0, len(columns))
	params := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		if err := ValidateIdentifier(col); err == nil {
			conditions = append(conditions, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '%c'`, col, LikeEscape))
			params = append(params, param)
		}
	}

	if len(conditions) == 0 {
		return "", nil
	}

	return "(" + strings.Join(conditions, " OR ") + ")", params
}

// isReservedWord checks if a word is a reserved SQL word
func isReservedWord(word string) bool {
	reserved := map[string]bool{
		"all": true, "and": true, "any": true, "as": true, "asc": true,
		"case": true, "check": true, "column": true, "constraint": true,
		"create": true, "default": true, "desc": true, "distinct": true,
		"else": true, "end": true, "false": true, "for": true, "foreign": true,
		"from": true, "grant": true, "group": true, "having": true, "in": true,
		"into": true, "limit": true, "not": true, "null": true, "offset": true,
		"on": true, "or": true, "order": true, "primary": true, "references": true,
		"select": true, "table": true, "then": true, "to": true, "true": true,
		"union": true, "unique": true, "user": true, "using": true, "when": true,
		"where": true, "with": true,
	}
	return reserved[strings.ToLower(word)]
}
