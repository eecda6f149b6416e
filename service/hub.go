package service

import (
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type entry struct {
	svc  Service
	args []any
}

// Hub owns registered services and drives them in dependency order
type Hub struct {
	mu      sync.Mutex
	log     *zap.SugaredLogger
	entries map[string]entry
	order   []string // Dependency order, resolved by InitAll
	running []string // Started services, stopped in reverse
}

// NewHub creates an empty hub; log may be nil
func NewHub(log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{log: log, entries: make(map[string]entry)}
}

// Register adds svc with the args its Init will receive
func (h *Hub) Register(svc Service, args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, dup := h.entries[name]; dup {
		return errors.Errorf("service already registered: %s", name)
	}
	h.entries[name] = entry{svc: svc, args: args}
	h.order = nil
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.entries[name]
	return e.svc, ok
}

// InitAll resolves dependencies and calls Init on every service
// A failed Init stops the services initialized before it
func (h *Hub) InitAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	order, err := h.resolve()
	if err != nil {
		return err
	}
	h.order = order

	for i, name := range order {
		e := h.entries[name]
		if err := e.svc.Init(e.args...); err != nil {
			h.stop(order[:i])
			return errors.Wrapf(err, "service %s init failed", name)
		}
	}
	return nil
}

// StartAll starts services in dependency order; a failure stops the ones already started
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.running = h.running[:0]
	for _, name := range h.order {
		if err := h.entries[name].svc.Start(); err != nil {
			h.stop(h.running)
			h.running = nil
			return errors.Wrapf(err, "service %s start failed", name)
		}
		h.running = append(h.running, name)
		h.log.Debugw("service started", "service", name)
	}
	return nil
}

// StopAll stops running services in reverse start order; errors are logged
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stop(h.running)
	h.running = nil
}

func (h *Hub) stop(names []string) {
	for _, name := range slices.Backward(names) {
		if err := h.entries[name].svc.Stop(); err != nil {
			h.log.Warnw("service stop failed", "service", name, "error", err)
		}
	}
}

// resolve orders services depth-first so every dependency precedes its
// dependents; siblings are visited by name for a stable order
func (h *Hub) resolve() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(h.entries))
	order := make([]string, 0, len(h.entries))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return errors.Errorf("circular service dependency: %s", strings.Join(append(path, name), " -> "))
		}
		state[name] = visiting
		deps := slices.Clone(h.entries[name].svc.Dependencies())
		slices.Sort(deps)
		for _, dep := range deps {
			if _, ok := h.entries[dep]; !ok {
				return errors.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range h.names() {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (h *Hub) names() []string {
	names := make([]string, 0, len(h.entries))
	for name := range h.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Names returns registered service names sorted
func (h *Hub) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.names()
}
