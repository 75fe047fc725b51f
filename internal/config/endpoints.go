package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Endpoint is one fixed source URL whose "dados" array becomes table rows.
type Endpoint struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type endpointsFile struct {
	Endpoints []Endpoint `yaml:"endpoints"`
}

// LoadEndpointsFile reads a YAML document of the form:
//
//	endpoints:
//	  - name: pedidos
//	    url: https://example.com/api/pedidos
func LoadEndpointsFile(path string) ([]Endpoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}
	return ParseEndpoints(raw)
}

func ParseEndpoints(raw []byte) ([]Endpoint, error) {
	var doc endpointsFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode endpoints file: %w", err)
	}
	endpoints := make([]Endpoint, 0, len(doc.Endpoints))
	for index, endpoint := range doc.Endpoints {
		endpoint.Name = strings.TrimSpace(endpoint.Name)
		endpoint.URL = strings.TrimSpace(endpoint.URL)
		if endpoint.Name == "" {
			endpoint.Name = fmt.Sprintf("endpoint-%d", index+1)
		}
		if err := endpoint.validate(); err != nil {
			return nil, fmt.Errorf("endpoint %d: %w", index+1, err)
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints, nil
}

func (e Endpoint) validate() error {
	if e.URL == "" {
		return fmt.Errorf("endpoint %q has no url", e.Name)
	}
	if !strings.HasPrefix(e.URL, "http://") && !strings.HasPrefix(e.URL, "https://") {
		return fmt.Errorf("endpoint %q url must be http or https: %q", e.Name, e.URL)
	}
	return nil
}
