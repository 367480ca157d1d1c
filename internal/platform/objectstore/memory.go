package objectstore

import (
	"context"
	"errors"
	"sync"
	"time"
)

type Memory struct {
	mu      sync.RWMutex
	objects map[string]Object
	signer  *Signer
}

func NewMemory(signer *Signer) *Memory {
	return &Memory{objects: make(map[string]Object), signer: signer}
}

func (m *Memory) Put(_ context.Context, objectPath string, data []byte, contentType string) error {
	cleaned, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[cleaned] = Object{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
		ModifiedAt:  time.Now().UTC(),
	}
	return nil
}

func (m *Memory) Get(_ context.Context, objectPath string) ([]byte, error) {
	cleaned, err := cleanPath(objectPath)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	object, ok := m.objects[cleaned]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return append([]byte(nil), object.Data...), nil
}

func (m *Memory) Delete(_ context.Context, objectPath string) error {
	cleaned, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, cleaned)
	return nil
}

func (m *Memory) SignedURL(_ context.Context, objectPath string, ttl time.Duration) (string, error) {
	cleaned, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	if m.signer == nil {
		return "", errors.New("object store has no signer")
	}
	link, _, err := m.signer.Sign(cleaned, ttl)
	return link, err
}

// Len reports the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

var _ Store = (*Memory)(nil)
