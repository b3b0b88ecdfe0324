package store

import (
	"context"
	"sync"
)

// Memory is an in-process Record store for tests and local development. The
// Persist/Clear semantics mirror the Redis implementation, including the
// membership cache reset.
type Memory struct {
	mu         sync.Mutex
	record     Record
	membership string
}

// NewMemory describes the newmemory operation and its observable behavior.
//
// NewMemory may return an error when input validation, dependency calls, or security checks fail.
// NewMemory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemory() *Memory {
	return &Memory{}
}

// Persist describes the persist operation and its observable behavior.
//
// Persist may return an error when input validation, dependency calls, or security checks fail.
// Persist does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Memory) Persist(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = Record{IsLoggedIn: true, Phone: phone}
	s.membership = ""
	return nil
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Memory) Load(_ context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record, nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Memory) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = Record{}
	return nil
}

// SetMembership seeds the cached membership value; tests use it to assert the
// reset-on-persist behavior.
func (s *Memory) SetMembership(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.membership = value
}

// Membership describes the membership operation and its observable behavior.
//
// Membership may return an error when input validation, dependency calls, or security checks fail.
// Membership does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Memory) Membership() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.membership
}
