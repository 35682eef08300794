package locator

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/lexandro/storycheck/catalog"
	"github.com/lexandro/storycheck/ignore"
	"github.com/lexandro/storycheck/naming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file() *fstest.MapFile {
	return &fstest.MapFile{Data: []byte("export {}\n")}
}

func containerPaths(cat *catalog.Catalog) []string {
	var paths []string
	for _, c := range cat.Containers() {
		paths = append(paths, c.Path)
	}
	return paths
}

func componentPaths(cat *catalog.Catalog) []string {
	var paths []string
	for _, c := range cat.Components() {
		paths = append(paths, c.SourcePath)
	}
	return paths
}

// readDirCounter records every ReadDir call.
type readDirCounter struct {
	fstest.MapFS
	calls []string
}

func (r *readDirCounter) ReadDir(name string) ([]fs.DirEntry, error) {
	r.calls = append(r.calls, name)
	return r.MapFS.ReadDir(name)
}

// failingFS fails to list one directory.
type failingFS struct {
	fstest.MapFS
	failDir string
}

func (f failingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == f.failDir {
		return nil, fs.ErrPermission
	}
	return f.MapFS.ReadDir(name)
}

func Test_Locate_NoContainers(t *testing.T) {
	fsys := fstest.MapFS{
		"App.tsx":        file(),
		"utils/math.ts":  file(),
		"pages/Home.tsx": file(),
	}

	cat, err := Locate(fsys, Options{})
	require.NoError(t, err)
	assert.True(t, cat.Empty())
	assert.Equal(t, 0, cat.ComponentCount())
}

func Test_Locate_SingleContainer(t *testing.T) {
	fsys := fstest.MapFS{
		"components/Button.tsx":                 file(),
		"components/Card.jsx":                   file(),
		"components/index.tsx":                  file(),
		"components/Button.test.tsx":            file(),
		"components/Card.spec.jsx":              file(),
		"components/styles.css":                 file(),
		"components/helpers.ts":                 file(),
		"components/stories/Button.stories.tsx": file(),
	}

	cat, err := Locate(fsys, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"components"}, containerPaths(cat))
	assert.Equal(t, []string{"components/Button.tsx", "components/Card.jsx"}, componentPaths(cat))

	container, ok := cat.Container("components")
	require.True(t, ok)
	assert.Equal(t, "Button", container.Components[0].Name)
	assert.Equal(t, ".tsx", container.Components[0].Extension)
	assert.Equal(t, "TypeScript", container.Components[0].Language)
	assert.Equal(t, "components", container.Components[0].Container)
}

func Test_Locate_StoryOnlyContainerIsAbsent(t *testing.T) {
	fsys := fstest.MapFS{
		"components/Button.stories.tsx": file(),
		"components/index.tsx":          file(),
	}

	cat, err := Locate(fsys, Options{})
	require.NoError(t, err)
	assert.True(t, cat.Empty())
}

func Test_Locate_NestedContainersAreIndependent(t *testing.T) {
	fsys := fstest.MapFS{
		"components/Outer.tsx":                  file(),
		"components/forms/components/Inner.tsx": file(),
		"components/components/Deep.tsx":        file(),
	}

	cat, err := Locate(fsys, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"components",
		"components/components",
		"components/forms/components",
	}, containerPaths(cat))
	assert.Equal(t, 3, cat.ComponentCount())

	outer, ok := cat.Container("components")
	require.True(t, ok)
	require.Len(t, outer.Components, 1)
	assert.Equal(t, "Outer", outer.Components[0].Name)

	inner, ok := cat.Container("components/forms/components")
	require.True(t, ok)
	require.Len(t, inner.Components, 1)
	assert.Equal(t, "Inner", inner.Components[0].Name)
}

func Test_Locate_DepthFirstSortedOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"b/components/B.tsx":               file(),
		"a/components/A.tsx":               file(),
		"a/nested/components/AN.tsx":       file(),
		"c/components/C.jsx":               file(),
		"a/components/zz/components/Z.tsx": file(),
	}

	cat, err := Locate(fsys, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a/components",
		"a/components/zz/components",
		"a/nested/components",
		"b/components",
		"c/components",
	}, containerPaths(cat))
}

func Test_Locate_RootIsNotAContainer(t *testing.T) {
	fsys := fstest.MapFS{
		"components/Button.tsx": file(),
	}

	cat, err := Locate(fsys, Options{Root: "components"})
	require.NoError(t, err)
	assert.True(t, cat.Empty())
}

func Test_Locate_SubdirectoryRoot(t *testing.T) {
	fsys := fstest.MapFS{
		"src/components/Button.tsx": file(),
		"other/components/Skip.tsx": file(),
	}

	cat, err := Locate(fsys, Options{Root: "src"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/components/Button.tsx"}, componentPaths(cat))
}

func Test_Locate_DescendsIntoStoriesByDefault(t *testing.T) {
	fsys := &readDirCounter{MapFS: fstest.MapFS{
		"components/Button.tsx":                 file(),
		"components/stories/Button.stories.tsx": file(),
	}}

	_, err := Locate(fsys, Options{})
	require.NoError(t, err)
	assert.Contains(t, fsys.calls, "components/stories")
}

func Test_Locate_SkipStoriesDirs(t *testing.T) {
	fsys := &readDirCounter{MapFS: fstest.MapFS{
		"components/Button.tsx":                 file(),
		"components/stories/Button.stories.tsx": file(),
	}}

	cat, err := Locate(fsys, Options{SkipStoriesDirs: true})
	require.NoError(t, err)
	assert.NotContains(t, fsys.calls, "components/stories")
	assert.Equal(t, 1, cat.ComponentCount())
}

func Test_Locate_SkipStoriesDirsSameResultForConventionalLayout(t *testing.T) {
	fsys := fstest.MapFS{
		"components/Button.tsx":                       file(),
		"components/stories/Button.stories.tsx":       file(),
		"features/components/Form.jsx":                file(),
		"features/components/stories/Form.stories.js": file(),
	}

	preserved, err := Locate(fsys, Options{})
	require.NoError(t, err)
	optimized, err := Locate(fsys, Options{SkipStoriesDirs: true})
	require.NoError(t, err)
	assert.Equal(t, componentPaths(preserved), componentPaths(optimized))
}

func Test_Locate_IgnoresDirectoryNamedLikeComponentFile(t *testing.T) {
	fsys := fstest.MapFS{
		"components/Button.tsx/inner.txt": file(),
		"components/Card.tsx":             file(),
	}

	cat, err := Locate(fsys, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"components/Card.tsx"}, componentPaths(cat))
}

func Test_Locate_CustomContainerAndExtensions(t *testing.T) {
	fsys := fstest.MapFS{
		"widgets/Button.vue":  file(),
		"widgets/Button.tsx":  file(),
		"components/Card.vue": file(),
	}

	cat, err := Locate(fsys, Options{
		ContainerName: "widgets",
		Classifier:    naming.NewClassifier([]string{".vue"}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"widgets/Button.vue"}, componentPaths(cat))
}

func Test_Locate_Filter(t *testing.T) {
	fsys := fstest.MapFS{
		"components/Button.tsx":                  file(),
		"node_modules/lib/components/Vendor.tsx": file(),
		"legacy/components/Old.tsx":              file(),
	}

	filter := ignore.NewMatcher(fsys, ignore.MatcherOptions{
		CustomPatterns:  []string{"legacy"},
		SkipDefaultDirs: true,
	})
	cat, err := Locate(fsys, Options{Filter: filter})
	require.NoError(t, err)
	assert.Equal(t, []string{"components/Button.tsx"}, componentPaths(cat))
}

func Test_Locate_NodeModulesWalkedWithoutDefaultSkip(t *testing.T) {
	fsys := fstest.MapFS{
		"components/Button.tsx":                  file(),
		"node_modules/lib/components/Vendor.tsx": file(),
	}

	filter := ignore.NewMatcher(fsys, ignore.MatcherOptions{})
	cat, err := Locate(fsys, Options{Filter: filter})
	require.NoError(t, err)
	assert.Equal(t, []string{"components/Button.tsx", "node_modules/lib/components/Vendor.tsx"}, componentPaths(cat))
}

func Test_Locate_TraversalErrorAborts(t *testing.T) {
	fsys := failingFS{
		MapFS: fstest.MapFS{
			"components/Button.tsx":      file(),
			"locked/components/Card.tsx": file(),
		},
		failDir: "locked",
	}

	cat, err := Locate(fsys, Options{})
	assert.Nil(t, cat)
	require.Error(t, err)

	var traversalErr *TraversalError
	require.True(t, errors.As(err, &traversalErr))
	assert.Equal(t, "locked", traversalErr.Path)
	assert.True(t, errors.Is(err, fs.ErrPermission))
}

func Test_Locate_MissingRoot(t *testing.T) {
	_, err := Locate(fstest.MapFS{}, Options{Root: "src"})
	require.Error(t, err)

	var traversalErr *TraversalError
	assert.True(t, errors.As(err, &traversalErr))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
