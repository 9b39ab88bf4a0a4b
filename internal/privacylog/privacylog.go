// Package privacylog filters the attributes of slog records.
//
// Attributes whose key names key material are replaced by Redacted. Attributes
// naming a payment party are replaced by a fingerprint under the key <key>_fp,
// so that log lines about the same party can be correlated within one process
// without revealing the address.
package privacylog

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taurusgroup/stealth-payments/internal/hash"
)

// Redacted replaces the value of attributes carrying key material.
const Redacted = "[REDACTED]"

var (
	// salt makes fingerprints unlinkable across processes.
	salt [16]byte

	parties = map[string]bool{
		"sender":          true,
		"receiver":        true,
		"recipient":       true,
		"stealth_address": true,
	}
	secretWords = []string{"key", "share", "secret", "private", "seed", "password", "token"}
)

func init() {
	if _, err := rand.Read(salt[:]); err != nil {
		panic(fmt.Errorf("privacylog: salt: %w", err))
	}
}

// SanitizingHandler is a slog.Handler passing filtered records to another handler.
type SanitizingHandler struct {
	next slog.Handler
}

// WrapHandler returns a SanitizingHandler in front of next, or nil if next is nil.
func WrapHandler(next slog.Handler) slog.Handler {
	if next == nil {
		return nil
	}
	return &SanitizingHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *SanitizingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SanitizingHandler) Handle(ctx context.Context, rec slog.Record) error {
	filtered := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		filtered.AddAttrs(SanitizeAttr(a))
		return true
	})
	return h.next.Handle(ctx, filtered)
}

func (h *SanitizingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SanitizingHandler{next: h.next.WithAttrs(sanitize(attrs))}
}

func (h *SanitizingHandler) WithGroup(name string) slog.Handler {
	return &SanitizingHandler{next: h.next.WithGroup(name)}
}

// SanitizeAttr returns the filtered form of a, descending into groups.
func SanitizeAttr(a slog.Attr) slog.Attr {
	key := strings.TrimSpace(a.Key)
	name := strings.ToLower(key)
	if isSecret(name) {
		return slog.String(key, Redacted)
	}
	v := a.Value.Resolve()
	switch {
	case parties[name]:
		return slog.String(key+"_fp", Fingerprint(text(v)))
	case v.Kind() == slog.KindGroup:
		return slog.Attr{Key: key, Value: slog.GroupValue(sanitize(v.Group())...)}
	default:
		return slog.Attr{Key: key, Value: v}
	}
}

// Fingerprint returns "fp_" followed by 16 hex digits, or "" for a blank value.
//
// The value is trimmed and lower cased first, so that an address gets the same
// fingerprint whatever its checksum casing.
func Fingerprint(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	h := hash.New("stealth-payments log fingerprint")
	_ = h.WriteAny(salt[:], value)
	return "fp_" + hex.EncodeToString(h.Sum()[:8])
}

func sanitize(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i := range attrs {
		out[i] = SanitizeAttr(attrs[i])
	}
	return out
}

func isSecret(name string) bool {
	for _, w := range secretWords {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

func text(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return fmt.Sprint(v.Any())
}
