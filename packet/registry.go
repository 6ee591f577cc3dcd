package packet

import "fmt"

// Registry maps packet kinds to factories producing empty Body values, letting
// a caller recover concrete message types from received packets.
//
// Registry is not goroutine-safe. Register all kinds during setup, before the
// tick loop starts.
type Registry struct {
	factories map[uint8]func() Body
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[uint8]func() Body)}
}

// Register binds a factory to a packet kind.
// It returns ErrKindRegistered when the kind is already bound.
func (r *Registry) Register(kind uint8, factory func() Body) error {
	if _, ok := r.factories[kind]; ok {
		return fmt.Errorf("%w: kind %d", ErrKindRegistered, kind)
	}
	r.factories[kind] = factory

	return nil
}

// MustRegister binds a factory to a packet kind and panics when the kind is
// already bound. Intended for setup-time registration of a fixed protocol.
func (r *Registry) MustRegister(kind uint8, factory func() Body) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// Decode recovers a concrete Body from a received packet using the factory
// registered for the packet's kind.
//
// It returns ErrKindUnknown for unregistered kinds, or the body's own
// unmarshaling error.
func (r *Registry) Decode(p Packet) (Body, error) {
	factory, ok := r.factories[p.Header.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: kind %d", ErrKindUnknown, p.Header.Kind)
	}

	body := factory()
	if err := body.UnmarshalBinary(p.Body); err != nil {
		return nil, fmt.Errorf("unmarshal packet body kind %d: %w", p.Header.Kind, err)
	}

	return body, nil
}
