// Package rewrite propagates a local-ID change through a record by textual
// replacement: serialize, replace every literal occurrence of the old ID,
// reparse. The technique is fragile against false-positive substring matches
// but matches what the remote backend expects; keeping it behind this
// service lets a structural rewrite replace it later without touching
// callers.
package rewrite

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"regexp"
)

// colorCodePattern matches the bracketed 6-hex-digit tokens the game embeds
// in display-name-like strings for client-side colorization, e.g. [FF0000].
var colorCodePattern = regexp.MustCompile(`\[[0-9A-F]{6}\]`)

// Service rewrites identifier occurrences inside serialized records
type Service struct {
	logger *slog.Logger
}

// New creates a rewrite service
func New(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// CleanID strips color-formatting codes from a local ID, yielding the
// cleaned representation the backend uses interchangeably with the
// canonical one.
func CleanID(id string) string {
	return colorCodePattern.ReplaceAllString(id, "")
}

// Rewrite serializes value, replaces every literal occurrence of
// oldCanonical (and of oldClean, when it differs) with newID, and reparses.
// The identifiers are treated as literal text, never as patterns. If the
// rewritten text no longer parses, the original value is returned unchanged.
// An empty old ID disables rewriting entirely.
func (s *Service) Rewrite(value json.RawMessage, oldCanonical, oldClean, newID string) json.RawMessage {
	if oldCanonical == "" || len(value) == 0 {
		return value
	}

	rewritten := bytes.ReplaceAll(value, []byte(oldCanonical), []byte(newID))
	if oldClean != "" && oldClean != oldCanonical {
		rewritten = bytes.ReplaceAll(rewritten, []byte(oldClean), []byte(newID))
	}

	if !json.Valid(rewritten) {
		s.logger.Warn("rewrite produced unparseable text, keeping original",
			slog.String("old_id", oldClean),
			slog.String("new_id", newID),
		)
		return value
	}

	return rewritten
}
