package api

import "fmt"

// Error is the one error shape the transport layer raises. Handlers and
// middleware return it; the boundary handler in problem.go converts it
// into the response envelope exactly once. Detail strings are fixed per
// taxonomy entry so internals never leak through them.
type Error struct {
	Status int
	Title  string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

func errAuthentication() *Error {
	return &Error{Status: 401, Title: "Authentication Error", Detail: "Missing identity header."}
}

// errValidation carries a deliberately generic detail: individual field
// failures are not enumerated to callers.
func errValidation() *Error {
	return &Error{Status: 422, Title: "Validation Error", Detail: "Input validation failed"}
}

func errNotFound() *Error {
	return &Error{Status: 404, Title: "Not Found", Detail: "Card not found."}
}

func errForbidden(action string) *Error {
	return &Error{Status: 403, Title: "Forbidden", Detail: "You are not allowed to " + action + " this card."}
}

func errRateLimited(rule Rule) *Error {
	return &Error{Status: 429, Title: "Too Many Requests", Detail: "Rate limit exceeded: " + rule.String()}
}

func errInternal() *Error {
	return &Error{Status: 500, Title: "Internal Server Error", Detail: "An unexpected error occurred."}
}
