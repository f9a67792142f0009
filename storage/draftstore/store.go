package draftstore

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core"
)

// Fixed keys under which the portal persists its client-side state.
const (
	KeyRegistrationProgress = "napps_registration_progress"
	KeyPaymentPending       = "napps_payment_pending"
	KeyLevyForm             = "napps_levy_form"
	KeyProprietorSession    = "napps_proprietor_session"
	KeyAdminSession         = "napps_admin_session"
)

// KV is the raw key-value medium holding per-profile state.
// Implementations must be safe for concurrent use; last writer wins.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// Store wraps a KV with JSON + timestamp envelope semantics.
// Persistence is best-effort: failures are logged, never propagated.
type Store struct {
	kv      KV
	logger  core.Logger
	nowFunc func() time.Time // mockable
}

func NewStore(kv KV, logger core.Logger) *Store {
	return &Store{kv: kv, logger: logger, nowFunc: time.Now}
}

// Save serializes v merged with {timestamp: now} (epoch-ms) and writes it under key.
// v must marshal to a JSON object.
func (s *Store) Save(key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("draftstore: marshaling value", errors.Wrapf(err, "saving %q", key))
		return
	}
	var envelope map[string]json.RawMessage
	if err = json.Unmarshal(raw, &envelope); err != nil {
		s.logger.Error("draftstore: value is not a JSON object", errors.Wrapf(err, "saving %q", key))
		return
	}
	ts, _ := json.Marshal(s.nowFunc().UnixMilli())
	envelope["timestamp"] = ts

	data, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Error("draftstore: marshaling envelope", errors.Wrapf(err, "saving %q", key))
		return
	}
	if err = s.kv.Set(key, data); err != nil {
		s.logger.Error("draftstore: writing value", errors.Wrapf(err, "saving %q", key))
	}
}

// Load parses the entry under key into dst and reports whether it was found.
// Absent or malformed entries yield false, never an error: a corrupt entry is
// treated the same as no entry at all.
func (s *Store) Load(key string, dst interface{}) bool {
	data, ok, err := s.kv.Get(key)
	if err != nil {
		s.logger.Error("draftstore: reading value", errors.Wrapf(err, "loading %q", key))
		return false
	}
	if !ok {
		return false
	}
	if err = json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("draftstore: discarding malformed entry", errors.Wrapf(err, "loading %q", key))
		return false
	}
	return true
}

// Clear removes the entry under key.
func (s *Store) Clear(key string) {
	if err := s.kv.Remove(key); err != nil {
		s.logger.Error("draftstore: removing value", errors.Wrapf(err, "clearing %q", key))
	}
}
