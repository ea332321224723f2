package method

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
)

// Type is the engine's classifier type.
type Type string

const (
	TypeBDT        Type = "kBDT"
	TypeDNN        Type = "kDNN"
	TypeMLP        Type = "kMLP"
	TypeLikelihood Type = "kLikelihood"
	TypeFisher     Type = "kFisher"
	TypeCuts       Type = "kCuts"
	TypeSVM        Type = "kSVM"
	TypeKNN        Type = "kKNN"
)

var knownTypes = []Type{TypeBDT, TypeDNN, TypeMLP, TypeLikelihood, TypeFisher, TypeCuts, TypeSVM, TypeKNN}

// ParseType accepts the engine spelling ("kBDT") or the bare name ("BDT").
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	for _, t := range knownTypes {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, string(t)[1:]) {
			return t, nil
		}
	}
	return "", fmt.Errorf("method: unknown classifier type %q", s)
}

// Booking is one classifier handed to the engine.
type Booking struct {
	Name    string `yaml:"name"`
	Type    Type   `yaml:"type"`
	Options string `yaml:"options"`
}

// Builder produces the booking for a registered method name.
type Builder func() (Booking, error)

// Registry maintains known method builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

// Register installs a builder. Returns an error if the name already exists.
func (r *Registry) Register(name string, builder Builder) error {
	if name == "" {
		return fmt.Errorf("method: name is required")
	}
	if builder == nil {
		return fmt.Errorf("method: builder is required for %s", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[name]; exists {
		return fmt.Errorf("method: %s already registered", name)
	}
	r.builders[name] = builder
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(name string, builder Builder) {
	if err := r.Register(name, builder); err != nil {
		panic(err)
	}
}

// Resolve builds the booking for name.
func (r *Registry) Resolve(name string) (Booking, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return Booking{}, fmt.Errorf("method: unknown name %s", name)
	}
	booking, err := builder()
	if err != nil {
		return Booking{}, fmt.Errorf("method: %s: %w", name, err)
	}
	if booking.Name == "" {
		booking.Name = name
	}
	return booking, nil
}

// Names returns the sorted registered method names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves every requested name in request order. Unknown names are
// logged and returned separately; repeated names are booked once.
func (r *Registry) Select(requested []string, logger *slog.Logger) ([]Booking, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		bookings []Booking
		unknown  []string
		seen     = map[string]struct{}{}
	)
	for _, name := range requested {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		r.mu.RLock()
		_, ok := r.builders[name]
		r.mu.RUnlock()
		if !ok {
			if suggestions := r.Suggest(name, 3); len(suggestions) > 0 {
				logger.Warn("unknown classifier method skipped", "method", name, "did_you_mean", strings.Join(suggestions, ","))
			} else {
				logger.Warn("unknown classifier method skipped", "method", name)
			}
			unknown = append(unknown, name)
			continue
		}
		booking, err := r.Resolve(name)
		if err != nil {
			return nil, unknown, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, unknown, nil
}

// Suggest returns up to limit registered names that fuzzily match name, best
// match first.
func (r *Registry) Suggest(name string, limit int) []string {
	names := r.Names()
	var out []string
	for _, m := range fuzzy.Find(name, names) {
		if m.Str == name {
			continue
		}
		out = append(out, m.Str)
		if len(out) == limit {
			break
		}
	}
	return out
}

// ParseList splits a comma or space separated method list, dropping blanks.
func ParseList(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
