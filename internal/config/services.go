package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/project-tktt/go-extractor/internal/common/extractor"
	"github.com/project-tktt/go-extractor/internal/module"
	"gopkg.in/yaml.v3"
)

// Catalogue is the YAML description of every service and its listings
type Catalogue struct {
	Services []ServiceConfig `yaml:"services"`
}

type ServiceConfig struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
	// Capabilities lists audio, video and live
	Capabilities []string          `yaml:"capabilities"`
	BaseURL      string            `yaml:"base_url"`
	Links        LinksConfig       `yaml:"links"`
	Clients      map[string]string `yaml:"clients"`
	Listings     []ListingConfig   `yaml:"listings"`
}

// LinksConfig holds the URL patterns of each link type
type LinksConfig struct {
	Stream   PatternConfig `yaml:"stream"`
	Channel  PatternConfig `yaml:"channel"`
	Playlist PatternConfig `yaml:"playlist"`
}

// PatternConfig is a regular expression with an "id" group and the URL template built from an id
type PatternConfig struct {
	Pattern  string `yaml:"pattern"`
	Template string `yaml:"template"`
}

type ListingConfig struct {
	Name string `yaml:"name"`
	// Type is json, html or feed
	Type    string            `yaml:"type"`
	Kind    string            `yaml:"kind"`
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
	Body    string            `yaml:"body"`

	// JSON listings
	Items    string            `yaml:"items"`
	KindPath string            `yaml:"kind_path"`
	Kinds    map[string]string `yaml:"kinds"`
	Total    string            `yaml:"total"`
	LastPage string            `yaml:"last_page"`
	Next     string            `yaml:"next"`
	IDs      string            `yaml:"ids"`
	BatchURL string            `yaml:"batch_url"`

	// HTML listings
	ItemSelector string `yaml:"item_selector"`
	NextSelector string `yaml:"next_selector"`

	Paging module.Paging    `yaml:"paging"`
	Fields extractor.Fields `yaml:"fields"`
}

// LoadServicesFile reads the catalogue at path. It returns nil, nil when the file does not exist.
func LoadServicesFile(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read services file: %w", err)
	}

	var cat Catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse services file: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks that service ids and names are unique and every listing is named
func (c *Catalogue) Validate() error {
	ids := make(map[int]bool)
	names := make(map[string]bool)
	for _, svc := range c.Services {
		if svc.Name == "" {
			return fmt.Errorf("service %d has no name", svc.ID)
		}
		if ids[svc.ID] {
			return fmt.Errorf("duplicate service id %d", svc.ID)
		}
		if names[svc.Name] {
			return fmt.Errorf("duplicate service name %q", svc.Name)
		}
		ids[svc.ID], names[svc.Name] = true, true

		listings := make(map[string]bool)
		for _, l := range svc.Listings {
			if l.Name == "" {
				return fmt.Errorf("service %s: listing without name", svc.Name)
			}
			if listings[l.Name] {
				return fmt.Errorf("service %s: duplicate listing %q", svc.Name, l.Name)
			}
			listings[l.Name] = true
			if _, err := module.ParsePagingMode(string(l.Paging.Mode)); err != nil {
				return fmt.Errorf("service %s: listing %s: %w", svc.Name, l.Name, err)
			}
		}
	}
	return nil
}
