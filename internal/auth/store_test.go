package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	s := NewKeyringStore(KeyringService)

	_, err := s.Get(OpenAIKeyName)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Set(OpenAIKeyName, "sk-secret"))
	got, err := s.Get(OpenAIKeyName)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", got)

	require.NoError(t, s.Delete(OpenAIKeyName))
	require.NoError(t, s.Delete(OpenAIKeyName))
	_, err = s.Get(OpenAIKeyName)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "creds")
	s := NewFileStore(dir)

	require.NoError(t, s.Set(OpenAIKeyName, "sk-file\n"))

	info, err := os.Stat(filepath.Join(dir, OpenAIKeyName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := s.Get(OpenAIKeyName)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", got)

	require.NoError(t, s.Delete(OpenAIKeyName))
	_, err = s.Get(OpenAIKeyName)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_Validation(t *testing.T) {
	s := NewFileStore(t.TempDir())

	assert.Error(t, s.Set("", "x"))
	assert.Error(t, s.Set("../escape", "x"))
	assert.Error(t, s.Set(OpenAIKeyName, "   "))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "sk-a****wxyz", MaskSecret("sk-abcdewxyz"))
	assert.Equal(t, "****", MaskSecret("abcd"))
}
