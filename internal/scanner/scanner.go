package scanner

import (
	"context"
	"fmt"
	"sort"

	"DiscussionScanner/internal/domain"
)

// Request carries all parameters required to fetch one batch.
type Request struct {
	// Limit bounds the number of drafts returned.
	Limit int
	// Existing is the number of articles already stored; archive sources derive their window from it.
	Existing int
}

// Scanner captures a single news source strategy (NYT archive, top stories, RSS).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.ArticleDraft, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered (known: %v)", name, r.Names())
}

// Names lists registered scanners alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
