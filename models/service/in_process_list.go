package service

import (
	"sync"
)

// InProcessList is a fixed-size ring of keys a worker is currently
// handling. NSQ may deliver the same message more than once, so the
// registrar checks this before starting a second registration of an
// upload it is already registering. Safe for concurrent use.
type InProcessList struct {
	capacity int
	index    int
	items    []string
	mutex    sync.RWMutex
}

// NewInProcessList returns a list that remembers up to capacity keys.
// When full, adding a key evicts the oldest one.
func NewInProcessList(capacity int) *InProcessList {
	if capacity < 1 {
		capacity = 1
	}
	return &InProcessList{
		capacity: capacity,
		items:    make([]string, capacity),
	}
}

// Add records key, overwriting the oldest entry when full.
func (list *InProcessList) Add(key string) {
	list.mutex.Lock()
	list.items[list.index] = key
	list.index = (list.index + 1) % list.capacity
	list.mutex.Unlock()
}

// AddIfAbsent records key and returns true, unless key is already in
// the list, in which case it returns false.
func (list *InProcessList) AddIfAbsent(key string) bool {
	list.mutex.Lock()
	defer list.mutex.Unlock()
	for _, value := range list.items {
		if value == key {
			return false
		}
	}
	list.items[list.index] = key
	list.index = (list.index + 1) % list.capacity
	return true
}

func (list *InProcessList) Contains(key string) bool {
	if key == "" {
		return false
	}
	list.mutex.RLock()
	defer list.mutex.RUnlock()
	for _, value := range list.items {
		if value == key {
			return true
		}
	}
	return false
}

// Remove clears every occurrence of key.
func (list *InProcessList) Remove(key string) {
	if key == "" {
		return
	}
	list.mutex.Lock()
	for i, value := range list.items {
		if value == key {
			list.items[i] = ""
		}
	}
	list.mutex.Unlock()
}
