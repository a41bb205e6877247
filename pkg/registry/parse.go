package registry

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseError indicates a malformed line in a table file. Any parse error
// aborts the whole load so a partially-read table is never installed.
type ParseError struct {
	// File is the source file path.
	File string

	// Line is the 1-based line number.
	Line int

	// Message describes what is wrong with the line.
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// ParseProviders reads a provider table in "name|url|api_key" line format.
// Blank lines and lines starting with '#' are skipped. Duplicate names are
// resolved last-write-wins. The returned slice preserves file order with
// duplicates already collapsed.
func ParseProviders(r io.Reader, filename string) ([]Provider, error) {
	var (
		order   []string
		byName  = make(map[string]Provider)
		scanner = bufio.NewScanner(r)
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			return nil, &ParseError{
				File:    filename,
				Line:    lineNo,
				Message: fmt.Sprintf("expected 3 fields \"name|url|api_key\", got %d", len(parts)),
			}
		}

		name := strings.TrimSpace(parts[0])
		url := strings.TrimRight(strings.TrimSpace(parts[1]), "/")
		apiKey := strings.TrimSpace(parts[2])

		if name == "" {
			return nil, &ParseError{File: filename, Line: lineNo, Message: "provider name is empty"}
		}
		if strings.Contains(name, "/") {
			return nil, &ParseError{
				File:    filename,
				Line:    lineNo,
				Message: fmt.Sprintf("provider name %q must not contain '/'", name),
			}
		}
		if url == "" {
			return nil, &ParseError{File: filename, Line: lineNo, Message: "provider URL is empty"}
		}

		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] = Provider{Name: name, BaseURL: url, APIKey: apiKey}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	providers := make([]Provider, 0, len(order))
	for _, name := range order {
		providers = append(providers, byName[name])
	}
	return providers, nil
}

// ParseTokens reads a token table in "description|token" line format.
// Blank lines and '#' comments are skipped.
func ParseTokens(r io.Reader, filename string) ([]Token, error) {
	var (
		tokens  []Token
		scanner = bufio.NewScanner(r)
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != 2 {
			return nil, &ParseError{
				File:    filename,
				Line:    lineNo,
				Message: fmt.Sprintf("expected 2 fields \"description|token\", got %d", len(parts)),
			}
		}

		description := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if value == "" {
			return nil, &ParseError{File: filename, Line: lineNo, Message: "token value is empty"}
		}

		tokens = append(tokens, Token{Description: description, Value: value})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	return tokens, nil
}
