package blob

import (
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNameKeepsExtension(t *testing.T) {
	s := NewStore(afero.NewMemMapFs())
	s.now = func() time.Time { return time.Unix(0, 1700000000123456789) }

	name := s.GenerateName("Holiday Photo.PNG")
	assert.Regexp(t, regexp.MustCompile(`^1700000000123456789-[0-9a-f]{12}\.png$`), name)

	assert.Regexp(t, `^\d+-[0-9a-f]{12}$`, s.GenerateName("no-extension"))
	assert.Regexp(t, `^\d+-[0-9a-f]{12}\.jpg$`, s.GenerateName("../../etc/evil.J?P!G"))
}

func TestGenerateNameIsUnique(t *testing.T) {
	s := NewStore(afero.NewMemMapFs())
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		n := s.GenerateName("a.gif")
		require.False(t, seen[n], "duplicate name %s", n)
		seen[n] = true
	}
}

func TestSaveOpenRemove(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs)
	exists := func(name string) bool {
		ok, err := afero.Exists(fs, name)
		require.NoError(t, err)
		return ok
	}

	n, err := s.Save("blob.png", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.True(t, exists("blob.png"))

	f, err := s.Open("blob.png")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "pixels", string(data))

	require.NoError(t, s.Remove("blob.png"))
	assert.False(t, exists("blob.png"))

	_, err = s.Open("blob.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveMissingIsNotAnError(t *testing.T) {
	s := NewStore(afero.NewMemMapFs())
	assert.NoError(t, s.Remove("never-existed.png"))
}

func TestSaveRefusesOverwrite(t *testing.T) {
	s := NewStore(afero.NewMemMapFs())
	_, err := s.Save("x.png", strings.NewReader("one"))
	require.NoError(t, err)

	_, err = s.Save("x.png", strings.NewReader("two"))
	assert.ErrorIs(t, err, ErrExists)
}

func TestRejectsPathNames(t *testing.T) {
	s := NewStore(afero.NewMemMapFs())
	for _, name := range []string{"", "..", "../x.png", "a/b.png", `a\b.png`} {
		_, err := s.Save(name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
		assert.ErrorIs(t, s.Remove(name), ErrInvalidName, name)
	}
}

func TestNewOSStore(t *testing.T) {
	dir := t.TempDir() + "/nested/uploads"
	s, err := NewOSStore(dir)
	require.NoError(t, err)

	_, err = s.Save("a.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.FileExists(t, dir+"/a.txt")
}
