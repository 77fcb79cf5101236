package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Document file names inside a service directory.
const (
	ServiceFile    = "service-2.json"
	PaginatorsFile = "paginators-1.json"
	WaitersFile    = "waiters-2.json"
	ResourcesFile  = "resources-1.json"
)

// Documents holds the raw bytes of a service's documents. Optional documents
// are nil when absent.
type Documents struct {
	Service    []byte
	Paginators []byte
	Waiters    []byte
	Resources  []byte
}

// ServiceDir is a service found by Discover.
type ServiceDir struct {
	Name    string
	Path    string
	Version string

	HasPaginators bool
	HasWaiters    bool
	HasResources  bool
}

type serviceDocument struct {
	Metadata   Metadata              `json:"metadata"`
	Operations map[string]*Operation `json:"operations"`
	Shapes     map[string]*Shape     `json:"shapes"`
}

// ReadDocuments reads the documents in dir. Only service-2.json is required.
func ReadDocuments(dir string) (*Documents, error) {
	docs := &Documents{}

	service, err := os.ReadFile(filepath.Join(dir, ServiceFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ServiceFile, err)
	}
	docs.Service = service

	optional := map[string]*[]byte{
		PaginatorsFile: &docs.Paginators,
		WaitersFile:    &docs.Waiters,
		ResourcesFile:  &docs.Resources,
	}
	for name, target := range optional {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		*target = data
	}

	return docs, nil
}

// Parse decodes raw documents into a ServiceModel.
func Parse(name string, docs *Documents) (*ServiceModel, error) {
	var service serviceDocument
	if err := json.Unmarshal(docs.Service, &service); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, ServiceFile, err)
	}

	model := &ServiceModel{
		Name:       name,
		Metadata:   service.Metadata,
		Operations: service.Operations,
		Shapes:     service.Shapes,
	}
	if model.Operations == nil {
		model.Operations = map[string]*Operation{}
	}
	if model.Shapes == nil {
		model.Shapes = map[string]*Shape{}
	}
	for shapeName, shape := range model.Shapes {
		shape.Name = shapeName
	}
	for opName, op := range model.Operations {
		if op.Name == "" {
			op.Name = opName
		}
	}

	if docs.Paginators != nil {
		var doc PaginatorDocument
		if err := json.Unmarshal(docs.Paginators, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, PaginatorsFile, err)
		}
		model.paginators = &doc
	}

	if docs.Waiters != nil {
		var doc WaiterDocument
		if err := json.Unmarshal(docs.Waiters, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, WaitersFile, err)
		}
		model.waiters = &doc
	}

	if docs.Resources != nil {
		var doc ResourceDocument
		if err := json.Unmarshal(docs.Resources, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, ResourcesFile, err)
		}
		if doc.Resources == nil {
			doc.Resources = map[string]*ResourceShape{}
		}
		model.resources = &doc
	}

	return model, nil
}

// LoadService reads and parses the service documents in dir.
func LoadService(name, dir string) (*ServiceModel, error) {
	docs, err := ReadDocuments(dir)
	if err != nil {
		return nil, err
	}
	return Parse(name, docs)
}

// Discover lists the services under dataDir. A service is a directory that
// contains service-2.json either directly or in an API version
// subdirectory; when several versions exist the lexically latest wins.
func Discover(dataDir string) ([]ServiceDir, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var services []ServiceDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		serviceDir := filepath.Join(dataDir, entry.Name())

		path, version, err := latestVersionDir(serviceDir)
		if err != nil {
			return nil, err
		}
		if path == "" {
			continue
		}

		services = append(services, ServiceDir{
			Name:          entry.Name(),
			Path:          path,
			Version:       version,
			HasPaginators: fileExists(filepath.Join(path, PaginatorsFile)),
			HasWaiters:    fileExists(filepath.Join(path, WaitersFile)),
			HasResources:  fileExists(filepath.Join(path, ResourcesFile)),
		})
	}

	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	return services, nil
}

// Find returns the discovered service with the given name.
func Find(dataDir, name string) (ServiceDir, error) {
	services, err := Discover(dataDir)
	if err != nil {
		return ServiceDir{}, err
	}
	for _, s := range services {
		if s.Name == name {
			return s, nil
		}
	}
	return ServiceDir{}, fmt.Errorf("service %s not found in %s", name, dataDir)
}

func latestVersionDir(serviceDir string) (string, string, error) {
	if fileExists(filepath.Join(serviceDir, ServiceFile)) {
		return serviceDir, "", nil
	}

	entries, err := os.ReadDir(serviceDir)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", serviceDir, err)
	}

	var versions []string
	for _, entry := range entries {
		if entry.IsDir() && fileExists(filepath.Join(serviceDir, entry.Name(), ServiceFile)) {
			versions = append(versions, entry.Name())
		}
	}
	if len(versions) == 0 {
		return "", "", nil
	}
	sort.Strings(versions)
	latest := versions[len(versions)-1]
	return filepath.Join(serviceDir, latest), latest, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
