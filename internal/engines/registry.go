package engines

import (
	"fmt"
	"log/slog"
	"strings"
)

// Registry maps URL hosts onto registered engines. Registration is the
// only mutation; lookups afterwards are concurrency-safe.
type Registry struct {
	engines []Engine
	generic Engine
	logger  *slog.Logger
}

// NewRegistry creates an empty registry with the generic heuristic engine
// as its fallthrough for unclaimed domains.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		generic: NewGenericEngine(),
		logger:  logger,
	}
}

// Register adds an engine, rejecting any domain claim that overlaps an
// already registered one. A duplicate claim is a configuration error and
// must be fatal at startup.
func (r *Registry) Register(engine Engine) error {
	for _, d := range engine.Domains() {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			return fmt.Errorf("engine %s claims an empty domain", engine.Name())
		}
		for _, existing := range r.engines {
			for _, ed := range existing.Domains() {
				if domainsOverlap(d, ed) {
					return fmt.Errorf("duplicate domain claim %q: engines %s and %s", d, engine.Name(), existing.Name())
				}
			}
		}
	}

	r.engines = append(r.engines, engine)
	r.logger.Info("Engine registered",
		"engine", engine.Name(),
		"domains", engine.Domains(),
	)
	return nil
}

// domainsOverlap reports whether two claimed host substrings would both
// match some host. Substring claims overlap when one contains the other.
func domainsOverlap(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// ForURL returns the engine claiming the URL's host, or nil when no
// engine claims it. Callers fall back to Generic for nil.
func (r *Registry) ForURL(rawURL string) Engine {
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}
	for _, engine := range r.engines {
		for _, d := range engine.Domains() {
			if strings.Contains(host, strings.ToLower(d)) {
				r.logger.Debug("Engine matched",
					"engine", engine.Name(),
					"host", host,
				)
				return engine
			}
		}
	}
	return nil
}

// Generic returns the fallthrough heuristic engine.
func (r *Registry) Generic() Engine {
	return r.generic
}

// Names lists registered engine names for startup logging.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for _, e := range r.engines {
		names = append(names, e.Name())
	}
	return names
}

// NewDefaultRegistry builds the registry with every built-in engine,
// optionally extending domain lists from config. Any registration error
// is returned so callers can fail startup.
func NewDefaultRegistry(logger *slog.Logger, extraDomains map[string][]string) (*Registry, error) {
	registry := NewRegistry(logger)

	builtins := []Engine{
		NewNBCNewsEngine(),
		NewPoliticoEngine(),
		NewWashingtonPostEngine(),
		NewWSJEngine(),
		NewFinancialTimesEngine(),
		NewABCNewsEngine(),
		NewTwitterEngine(),
		NewTelegramPostEngine(),
	}

	for _, engine := range builtins {
		if extra, ok := extraDomains[engine.Name()]; ok {
			engine = withExtraDomains(engine, extra)
		}
		if err := registry.Register(engine); err != nil {
			return nil, fmt.Errorf("failed to register engine %s: %w", engine.Name(), err)
		}
	}

	return registry, nil
}

// extendedEngine wraps an engine with additional configured domains.
type extendedEngine struct {
	Engine
	domains []string
}

func withExtraDomains(engine Engine, extra []string) Engine {
	domains := append([]string{}, engine.Domains()...)
	for _, d := range extra {
		domains = append(domains, strings.ToLower(strings.TrimSpace(d)))
	}
	return &extendedEngine{Engine: engine, domains: domains}
}

func (e *extendedEngine) Domains() []string {
	return e.domains
}
