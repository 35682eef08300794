package hints

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// maxFuzziness is the largest edit distance bleve supports for fuzzy queries.
const maxFuzziness = 2

// StoryIndex is an in-memory index of story files keyed by the component name
// they document. It is built per scan to suggest near-miss stories for
// components reported as missing.
type StoryIndex struct {
	index bleve.Index
	count int
}

// Suggestion is a story file that may belong to a component.
type Suggestion struct {
	StoryPath string
	Name      string
	Score     float64
}

// storyDocument is the document structure stored in bleve.
type storyDocument struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// NewStoryIndex creates an empty in-memory story index.
func NewStoryIndex() (*StoryIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	return &StoryIndex{index: bleveIndex}, nil
}

// buildIndexMapping stores names as single lowercase keywords so that
// "PrimaryButton" is matched as one term.
func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewKeywordFieldMapping()
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	pathFieldMapping := bleve.NewKeywordFieldMapping()
	pathFieldMapping.Store = true
	pathFieldMapping.Index = false
	pathFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("path", pathFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Add indexes a story file under the component name it documents.
func (s *StoryIndex) Add(storyPath, componentName string) error {
	doc := storyDocument{
		Name: strings.ToLower(componentName),
		Path: storyPath,
	}
	if err := s.index.Index(storyPath, doc); err != nil {
		return fmt.Errorf("indexing story %s: %w", storyPath, err)
	}
	s.count++
	return nil
}

// Count returns the number of indexed stories.
func (s *StoryIndex) Count() int {
	return s.count
}

// Suggest returns up to max stories whose component name equals name
// case-insensitively or is within a small edit distance of it. Paths in
// exclude are never returned. A max of zero or less yields no suggestions.
func (s *StoryIndex) Suggest(name string, max int, exclude ...string) ([]Suggestion, error) {
	if s.count == 0 || name == "" || max <= 0 {
		return nil, nil
	}

	term := strings.ToLower(name)

	exact := bleve.NewTermQuery(term)
	exact.SetField("name")
	exact.SetBoost(2.0)

	fuzzy := bleve.NewFuzzyQuery(term)
	fuzzy.SetField("name")
	fuzzy.SetFuzziness(fuzzinessFor(term))

	searchRequest := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(exact, fuzzy), max+len(exclude), 0, false)
	searchRequest.Fields = []string{"name", "path"}

	results, err := s.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("searching stories for %s: %w", name, err)
	}

	excluded := make(map[string]bool, len(exclude))
	for _, p := range exclude {
		excluded[p] = true
	}

	var suggestions []Suggestion
	for _, hit := range results.Hits {
		if excluded[hit.ID] {
			continue
		}
		storyName, _ := hit.Fields["name"].(string)
		suggestions = append(suggestions, Suggestion{
			StoryPath: hit.ID,
			Name:      storyName,
			Score:     hit.Score,
		})
		if len(suggestions) >= max {
			break
		}
	}
	return suggestions, nil
}

// Close releases the index.
func (s *StoryIndex) Close() error {
	return s.index.Close()
}

// fuzzinessFor keeps short names from matching unrelated short names.
func fuzzinessFor(term string) int {
	switch {
	case len(term) <= 3:
		return 0
	case len(term) <= 6:
		return 1
	default:
		return maxFuzziness
	}
}
