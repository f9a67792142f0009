package draftstore

import "sync"

// inMemKV holds entries in memory; state does not survive a restart.
type inMemKV struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ KV = (*inMemKV)(nil)

func NewInMemKV() *inMemKV {
	return &inMemKV{entries: make(map[string][]byte)}
}

func (kv *inMemKV) Get(key string) ([]byte, bool, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	data, ok := kv.entries[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (kv *inMemKV) Set(key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	kv.entries[key] = cp
	return nil
}

func (kv *inMemKV) Remove(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.entries, key)
	return nil
}
