package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Component is a checkable component file found directly inside a container.
type Component struct {
	Name       string // Base name without extension
	SourcePath string // Path relative to the scan root (forward slashes)
	Extension  string // Extension with leading dot
	Container  string // Path of the owning container
	Language   string // Detected language
}

// Container is a directory named like the reserved container identifier that
// holds at least one checkable component.
type Container struct {
	Path       string // Path relative to the scan root (forward slashes)
	Components []Component
}

// Catalog maps container paths to their components. It preserves discovery
// order and is never modified after New returns, so it is safe to share.
type Catalog struct {
	containers []Container
	byPath     map[string]int
	components int
}

// New builds a catalog from containers in discovery order.
// Containers without components are dropped; a repeated path is an error.
func New(containers []Container) (*Catalog, error) {
	c := &Catalog{
		containers: make([]Container, 0, len(containers)),
		byPath:     make(map[string]int, len(containers)),
	}
	for _, container := range containers {
		if len(container.Components) == 0 {
			continue
		}
		if _, exists := c.byPath[container.Path]; exists {
			return nil, fmt.Errorf("duplicate container %s", container.Path)
		}
		c.byPath[container.Path] = len(c.containers)
		c.containers = append(c.containers, container)
		c.components += len(container.Components)
	}
	return c, nil
}

// Containers returns the containers in discovery order.
func (c *Catalog) Containers() []Container {
	return c.containers
}

// Container returns the container at the given path.
func (c *Catalog) Container(path string) (Container, bool) {
	idx, ok := c.byPath[path]
	if !ok {
		return Container{}, false
	}
	return c.containers[idx], true
}

// ContainerCount returns the number of containers.
func (c *Catalog) ContainerCount() int {
	return len(c.containers)
}

// ComponentCount returns the number of components across all containers.
func (c *Catalog) ComponentCount() int {
	return c.components
}

// Empty reports whether no container was found.
func (c *Catalog) Empty() bool {
	return len(c.containers) == 0
}

// Components returns every component in discovery order.
func (c *Catalog) Components() []Component {
	result := make([]Component, 0, c.components)
	for _, container := range c.containers {
		result = append(result, container.Components...)
	}
	return result
}

// LanguageCounts returns a map of language -> component count.
func (c *Catalog) LanguageCounts() map[string]int {
	counts := make(map[string]int)
	for _, container := range c.containers {
		for _, component := range container.Components {
			counts[component.Language]++
		}
	}
	return counts
}

// SearchByGlob returns components whose source path matches a doublestar glob
// pattern, sorted by path.
func (c *Catalog) SearchByGlob(pattern string, maxResults int) ([]Component, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	// Normalize pattern to forward slashes
	pattern = strings.ReplaceAll(pattern, "\\", "/")

	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	var results []Component
	for _, component := range c.Components() {
		matched, err := doublestar.Match(pattern, component.SourcePath)
		if err != nil {
			continue
		}
		if matched {
			results = append(results, component)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].SourcePath < results[j].SourcePath
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
