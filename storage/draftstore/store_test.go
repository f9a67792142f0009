package draftstore

import (
	"encoding/json"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type draft struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

func setup(t *testing.T) (*Store, *inMemKV) {
	t.Helper()
	kv := NewInMemKV()
	return NewStore(kv, nopLogger{}), kv
}

func TestStore_saveLoadClear(t *testing.T) {
	store, _ := setup(t)

	var got draft
	if store.Load(KeyRegistrationProgress, &got) {
		t.Fatal("Load() on empty store = true, want false")
	}

	store.Save(KeyRegistrationProgress, draft{Name: "awe", Count: 3})
	if !store.Load(KeyRegistrationProgress, &got) {
		t.Fatal("Load() after Save() = false, want true")
	}
	if got.Name != "awe" || got.Count != 3 {
		t.Errorf("Load() = %+v, want the saved value back", got)
	}

	store.Clear(KeyRegistrationProgress)
	if store.Load(KeyRegistrationProgress, &got) {
		t.Error("Load() after Clear() = true, want false")
	}
}

func TestStore_stampsTimestamp(t *testing.T) {
	store, kv := setup(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.nowFunc = func() time.Time { return now }

	store.Save(KeyLevyForm, draft{Name: "awe"})

	data, ok, err := kv.Get(KeyLevyForm)
	if err != nil || !ok {
		t.Fatalf("kv.Get() = (%v, %v), want a stored entry", ok, err)
	}
	var envelope map[string]json.RawMessage
	if err = json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("stored entry is not a JSON object: %v", err)
	}
	var ts int64
	if err = json.Unmarshal(envelope["timestamp"], &ts); err != nil {
		t.Fatalf("stored entry has no numeric timestamp: %v", err)
	}
	if ts != now.UnixMilli() {
		t.Errorf("timestamp = %d, want %d (epoch-ms)", ts, now.UnixMilli())
	}

	var got draft
	if !store.Load(KeyLevyForm, &got) {
		t.Fatal("Load() = false, want true")
	}
	if got.Timestamp != now.UnixMilli() {
		t.Errorf("Load() timestamp = %d, want %d", got.Timestamp, now.UnixMilli())
	}
}

func TestStore_malformedEntryIsNoEntry(t *testing.T) {
	store, kv := setup(t)

	if err := kv.Set(KeyRegistrationProgress, []byte("{not json")); err != nil {
		t.Fatalf("kv.Set() failed: %v", err)
	}

	var got draft
	if store.Load(KeyRegistrationProgress, &got) {
		t.Error("Load() of malformed entry = true, want false")
	}
}

func TestStore_lastWriterWins(t *testing.T) {
	store, _ := setup(t)

	store.Save(KeyRegistrationProgress, draft{Name: "first"})
	store.Save(KeyRegistrationProgress, draft{Name: "second"})

	var got draft
	if !store.Load(KeyRegistrationProgress, &got) {
		t.Fatal("Load() = false, want true")
	}
	if got.Name != "second" {
		t.Errorf("Load() name = %q, want the last write", got.Name)
	}
}
