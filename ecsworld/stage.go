package ecsworld

import "sync/atomic"

// Stage is one of a World's lifecycle states.
type Stage string

const (
	Uninitialized Stage = "uninitialized"
	Initialized   Stage = "initialized"
	Destroyed     Stage = "destroyed"
	Errored       Stage = "error"
)

// stageManager is an atomic-value state machine, grounded on
// cardinal/worldstage.Manager's CompareAndSwap-based transition guard.
type stageManager struct {
	current atomic.Value
}

func newStageManager() *stageManager {
	m := &stageManager{}
	m.current.Store(Uninitialized)
	return m
}

func (m *stageManager) Current() Stage {
	return m.current.Load().(Stage)
}

func (m *stageManager) CompareAndSwap(old, new Stage) bool {
	return m.current.CompareAndSwap(old, new)
}

func (m *stageManager) Store(s Stage) {
	m.current.Store(s)
}
