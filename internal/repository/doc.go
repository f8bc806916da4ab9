// Package repository defines the data access interface for elicitation
// sessions.
//
// A session is persisted as a full snapshot of its network: progress,
// viewport, nodes with their foci, and links. Saves replace the previous
// snapshot inside one transaction, so a reader never sees half of an
// operation. The sqlite subpackage implements the interface.
package repository
