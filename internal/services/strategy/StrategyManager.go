package strategy

import (
	"sort"
	"strings"
)

// Factory builds a fresh strategy instance.
type Factory func() Strategy

// Registry maps strategy names to constructors and picks a strategy for a
// model from its keyword tags.
type Registry struct {
	factories map[string]Factory
	fallback  string
}

// NewRegistry returns a registry holding the built-in strategies configured
// with params. SMA-Cross is the fallback for models whose tags match nothing.
func NewRegistry(params Params) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		fallback:  NameSMACross,
	}
	r.Register(NameSMACross, func() Strategy {
		return NewSMACross(params.FastWindow, params.SlowWindow)
	})
	r.Register(NameMomentum, func() Strategy {
		return NewMomentum(params.MomentumLookback, params.MomentumThreshold)
	})
	r.Register(NameHold, func() Strategy {
		return Hold{}
	})
	return r
}

// Register adds or replaces a constructor under name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Get builds the strategy registered under name.
func (r *Registry) Get(name string) (Strategy, bool) {
	f, ok := r.factories[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	smaKeywords      = []string{"sma", "moving-average"}
	momentumKeywords = []string{"momentum", "trend"}
)

// FromKeywords applies the selection rule: moving-average tags pick
// SMA-Cross, momentum/trend tags pick Momentum, anything else falls back to
// SMA-Cross. Matching is case-insensitive.
func (r *Registry) FromKeywords(keywords []string) Strategy {
	return r.mustGet(SelectName(keywords))
}

// SelectName returns the registry name the selection rule picks for keywords.
func SelectName(keywords []string) string {
	tags := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		tags[strings.ToLower(strings.TrimSpace(kw))] = struct{}{}
	}

	if intersects(tags, smaKeywords) {
		return NameSMACross
	}
	if intersects(tags, momentumKeywords) {
		return NameMomentum
	}
	return NameSMACross
}

func (r *Registry) mustGet(name string) Strategy {
	if s, ok := r.Get(name); ok {
		return s
	}
	s, ok := r.Get(r.fallback)
	if !ok {
		return NewSMACross(DefaultParams().FastWindow, DefaultParams().SlowWindow)
	}
	return s
}

func intersects(tags map[string]struct{}, keywords []string) bool {
	for _, kw := range keywords {
		if _, ok := tags[kw]; ok {
			return true
		}
	}
	return false
}
