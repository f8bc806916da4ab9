package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"

	"gentle/internal/core/network"
	"gentle/internal/domain"
)

// ErrInvalidSnapshot is returned for imported documents that fail to parse or
// violate a network invariant
var ErrInvalidSnapshot = errors.New("invalid session snapshot")

// pseudonymBytes is the number of hash bytes kept in a pseudonym
const pseudonymBytes = 16

// Pseudonym derives a stable, non-reversible identifier for a session from a
// secret key. The same key and session always give the same pseudonym.
func Pseudonym(key []byte, sessionID string) (string, error) {
	h, err := blake2b.New256(key)
	if err != nil {
		return "", fmt.Errorf("pseudonym: %w", err)
	}
	h.Write([]byte(sessionID))
	return hex.EncodeToString(h.Sum(nil)[:pseudonymBytes]), nil
}

// ExportFormats lists the formats Export accepts
func (s *SessionService) ExportFormats() []string {
	return s.codecs.ExportFormats()
}

// Export renders a session in the given format. With a pseudonym key
// configured the session ID in the output is replaced by its pseudonym.
func (s *SessionService) Export(ctx context.Context, id, format string) ([]byte, string, error) {
	exporter, err := s.codecs.Exporter(format)
	if err != nil {
		return nil, "", err
	}

	net, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, "", err
	}

	s.mu.RLock()
	key := s.opts.PseudonymKey
	s.mu.RUnlock()
	if len(key) > 0 {
		if net.SessionID, err = Pseudonym(key, net.SessionID); err != nil {
			return nil, "", err
		}
	}

	var buf bytes.Buffer
	if err := exporter.Export(net, &buf); err != nil {
		return nil, "", fmt.Errorf("export %s: %w", format, err)
	}

	log.Info().Str("session_id", id).Str("format", format).Int("bytes", buf.Len()).Msg("session exported")
	return buf.Bytes(), exporter.ContentType(), nil
}

// Import reads a session snapshot and registers it under a fresh session ID.
// The snapshot must satisfy every network invariant.
func (s *SessionService) Import(ctx context.Context, format string, r io.Reader) (*domain.Network, error) {
	importer, err := s.codecs.Importer(format)
	if err != nil {
		return nil, err
	}

	net, err := importer.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSnapshot, format, err)
	}

	source := net.SessionID
	net.SessionID = uuid.NewString()
	now := time.Now().UTC()
	net.CreatedAt, net.UpdatedAt = now, now

	store, err := network.FromNetwork(net, s.storeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSnapshot, format, err)
	}
	if err := s.persist(ctx, store); err != nil {
		return nil, err
	}

	id := store.SessionID()
	s.mu.Lock()
	s.sessions[id] = &session{store: store, lastUsed: time.Now()}
	s.mu.Unlock()

	log.Info().
		Str("session_id", id).
		Str("source_id", source).
		Str("format", format).
		Int("alters", net.Alters()).
		Msg("session imported")
	s.eventBus.Publish(Event{Type: EventSessionCreated, SessionID: id})

	return store.Network(), nil
}
