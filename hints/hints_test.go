package hints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, stories map[string]string) *StoryIndex {
	t.Helper()
	idx, err := NewStoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	for path, name := range stories {
		require.NoError(t, idx.Add(path, name))
	}
	return idx
}

func suggestionPaths(suggestions []Suggestion) []string {
	var paths []string
	for _, s := range suggestions {
		paths = append(paths, s.StoryPath)
	}
	return paths
}

func Test_StoryIndex_Empty(t *testing.T) {
	idx := newTestIndex(t, nil)

	suggestions, err := idx.Suggest("Button", 3)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.Equal(t, 0, idx.Count())
}

func Test_StoryIndex_CaseMismatch(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"components/stories/button.stories.tsx": "button",
		"components/stories/Card.stories.tsx":   "Card",
	})

	suggestions, err := idx.Suggest("Button", 3)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "components/stories/button.stories.tsx", suggestions[0].StoryPath)
	assert.NotContains(t, suggestionPaths(suggestions), "components/stories/Card.stories.tsx")
}

func Test_StoryIndex_Typo(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"components/stories/PrimaryButon.stories.tsx": "PrimaryButon",
		"components/stories/Modal.stories.tsx":        "Modal",
	})

	suggestions, err := idx.Suggest("PrimaryButton", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"components/stories/PrimaryButon.stories.tsx"}, suggestionPaths(suggestions))
}

func Test_StoryIndex_StoryInAnotherContainer(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"features/components/stories/Avatar.stories.tsx": "Avatar",
	})

	suggestions, err := idx.Suggest("Avatar", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"features/components/stories/Avatar.stories.tsx"}, suggestionPaths(suggestions))
}

func Test_StoryIndex_ShortNamesMatchExactly(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"components/stories/Tab.stories.tsx": "Tab",
	})

	suggestions, err := idx.Suggest("Tag", 3)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func Test_StoryIndex_Exclude(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"a/components/stories/Avatar.stories.tsx": "Avatar",
		"b/components/stories/Avatar.stories.tsx": "Avatar",
	})

	suggestions, err := idx.Suggest("Avatar", 3, "a/components/stories/Avatar.stories.tsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"b/components/stories/Avatar.stories.tsx"}, suggestionPaths(suggestions))
}

func Test_StoryIndex_MaxResults(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"a/components/stories/Avatar.stories.tsx": "Avatar",
		"b/components/stories/Avatar.stories.tsx": "Avatar",
		"c/components/stories/Avatar.stories.tsx": "Avatar",
	})

	suggestions, err := idx.Suggest("Avatar", 2)
	require.NoError(t, err)
	assert.Len(t, suggestions, 2)
}

func Test_StoryIndex_ZeroMaxReturnsNothing(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"a/components/stories/Avatar.stories.tsx": "Avatar",
	})

	suggestions, err := idx.Suggest("Avatar", 0)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func Test_FuzzinessFor(t *testing.T) {
	assert.Equal(t, 0, fuzzinessFor("tab"))
	assert.Equal(t, 1, fuzzinessFor("modal"))
	assert.Equal(t, 2, fuzzinessFor("primarybutton"))
}
