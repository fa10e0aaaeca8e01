package service

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/project-tktt/go-extractor/internal/domain"
)

// Registry is the set of known services
type Registry struct {
	mu       sync.RWMutex
	services []*StreamingService
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds svc, rejecting a duplicate id or name
func (r *Registry) Register(svc *StreamingService) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.services {
		if s.ID == svc.ID {
			return fmt.Errorf("service id %d already registered", svc.ID)
		}
		if strings.EqualFold(s.Name, svc.Name) {
			return fmt.Errorf("service %q already registered", svc.Name)
		}
	}
	r.services = append(r.services, svc)
	return nil
}

func (r *Registry) ByID(id int) (*StreamingService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.services {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no service with id %d", id)
}

// ByName looks a service up by name, ignoring case
func (r *Registry) ByName(name string) (*StreamingService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.services {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no service named %q", name)
}

// ByURL returns the first service, in registration order, that recognises rawURL
func (r *Registry) ByURL(rawURL string) (*StreamingService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.services {
		if s.LinkTypeOf(rawURL) != LinkNone {
			return s, nil
		}
	}
	return nil, domain.NewParsingError("url", "no service can handle url %s", rawURL)
}

func (r *Registry) All() []*StreamingService {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.services)
}
