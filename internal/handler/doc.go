// Package handler implements the HTTP API of the elicitation server.
//
// SessionHandler maps every respondent callback onto a JSON endpoint under
// /api/sessions/{id}. Stage projections are read with
// GET /api/sessions/{id}/stages/{stage}; sessions can be exported as JSON,
// YAML, DOT or CSV and imported from JSON or YAML.
//
// # Errors
//
// Errors are returned as JSON with {error, details}. Input the elicitation
// rejects (an empty name, too many alters) answers 422 with a message meant
// for the respondent; malformed callbacks answer 400 and unknown sessions 404.
//
// # Middleware
//
// Chain composes Recover, CORS and Logger. The logging wrapper forwards
// Flush so the SSE stream can be served behind it.
package handler
