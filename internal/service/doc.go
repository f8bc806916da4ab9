// Package service coordinates elicitation sessions between the HTTP handlers,
// the per-respondent network stores and the repository.
//
// # Sessions
//
// SessionService keeps one network.Store per live session. Callbacks of the
// same session are serialized by a per-session lock; each accepted change is
// persisted as a full snapshot before it is acknowledged. Sessions idle for
// longer than the configured timeout are dropped from memory and restored
// from the repository on the next request.
//
// # Export
//
// Export renders a session through the codec registry. When a pseudonym key
// is configured, exported session IDs are replaced by a keyed BLAKE2b hash so
// that data sets can be shared without exposing the live identifiers.
//
// # Event System
//
// Every state change is published on the EventBus, which the server bridges
// to the SSE hub for connected clients.
package service
