package pipeline

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var ErrInvalidTransition = fmt.Errorf("invalid state transition")

type State string

const (
	StateIdle         State = "idle"
	StateExtracting   State = "extracting"
	StateTransforming State = "transforming"
	StateLoading      State = "loading"
	StateSucceeded    State = "succeeded"
	StateFailed       State = "failed"
)

type FSM struct {
	mu          sync.Mutex
	Transitions map[State]map[State]struct{}

	current State
	logger  *zap.Logger
}

type FSMOption func(*FSM)

func FSMWithLogger(logger *zap.Logger) FSMOption {
	return func(f *FSM) {
		f.logger = logger
	}
}

func FSMWithInitialState(state State) FSMOption {
	return func(f *FSM) {
		f.current = state
	}
}

func NewFSM(opts ...FSMOption) *FSM {
	f := &FSM{
		current: StateIdle,
		logger:  zap.NewNop(),

		Transitions: map[State]map[State]struct{}{
			StateIdle: {
				StateExtracting: {},
			},
			StateExtracting: {
				StateTransforming: {},
				StateFailed:       {},
			},
			StateTransforming: {
				StateLoading: {},
				StateFailed:  {},
			},
			StateLoading: {
				StateSucceeded: {},
				StateFailed:    {},
			},
			StateSucceeded: {
				StateExtracting: {}, // next scheduled run
			},
			StateFailed: {
				StateExtracting: {}, // next scheduled run
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FSM) Current() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *FSM) canTransition(to State) bool {
	if _, ok := f.Transitions[f.current][to]; ok {
		return true
	}
	return false
}

func (f *FSM) Transition(to State) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.canTransition(to) {
		f.logger.Error("Invalid state transition",
			zap.String("from", string(f.current)),
			zap.String("to", string(to)),
		)
		return ErrInvalidTransition
	}
	previous := f.current
	f.current = to

	f.logger.Info("State transitioned",
		zap.String("state", string(f.current)),
		zap.String("from", string(previous)),
	)
	return nil
}
