package store

import (
	"context"
	"sync"
)

// Memory 为进程内存储，主要用于测试与一次性命令。
type Memory struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemory() *Memory {
	return &Memory{objects: map[string]Object{}}
}

func (m *Memory) Put(ctx context.Context, obj Object) error {
	obj.Data = append([]byte(nil), obj.Data...)
	m.mu.Lock()
	m.objects[obj.ID] = obj
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (Object, error) {
	m.mu.RLock()
	obj, ok := m.objects[id]
	m.mu.RUnlock()
	if !ok {
		return Object{}, notFound(id)
	}
	obj.Data = append([]byte(nil), obj.Data...)
	return obj, nil
}

func (m *Memory) Close() error { return nil }
