package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Service serves the static device-facing registry: the source enumeration and
// the BMX aggregator catalog. The registry is loaded once at startup; updates
// ship as new deploys.
type Service struct {
	catalog Catalog
}

// Load reads and parses the registry document at path.
func Load(path string) (*Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	return &Service{catalog: catalog}, nil
}

// Sources returns the source provider enumeration.
func (s *Service) Sources() []SourceProvider {
	if s.catalog.Sources == nil {
		return []SourceProvider{}
	}
	return s.catalog.Sources
}

// BMXServices returns the enabled aggregator catalog entries.
func (s *Service) BMXServices() []BMXService {
	services := []BMXService{}
	for _, svc := range s.catalog.BMXServices {
		if svc.Enabled {
			services = append(services, svc)
		}
	}
	return services
}

// SourceByName returns the source provider with the given wire name, or nil.
func (s *Service) SourceByName(name string) *SourceProvider {
	for i := range s.catalog.Sources {
		if s.catalog.Sources[i].Name == name {
			return &s.catalog.Sources[i]
		}
	}
	return nil
}
