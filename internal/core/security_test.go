// AngelaMos | 2026
// security_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHasher(t *testing.T) *Argon2Hasher {
	t.Helper()
	h, err := NewArgon2Hasher(ArgonParams{Memory: 1024, Time: 1, Threads: 1, KeyLen: 32})
	require.NoError(t, err)
	return h
}

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	h := testHasher(t)

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := h.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_SaltsDiffer(t *testing.T) {
	h := testHasher(t)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestArgon2Hasher_EmptyHash(t *testing.T) {
	h := testHasher(t)

	ok, err := h.Verify("anything", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_MalformedHash(t *testing.T) {
	h := testHasher(t)

	_, err := h.Verify("pw", "$bcrypt$nope")
	assert.Error(t, err)

	_, err = h.Verify("pw", "$argon2i$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA")
	assert.ErrorContains(t, err, "unsupported algorithm")
}

func TestArgon2Hasher_NeedsRehash(t *testing.T) {
	weak := testHasher(t)
	hash, err := weak.Hash("pw")
	require.NoError(t, err)

	assert.False(t, weak.NeedsRehash(hash))

	strong, err := NewArgon2Hasher(ArgonParams{Memory: 2048, Time: 2, Threads: 1, KeyLen: 32})
	require.NoError(t, err)
	assert.True(t, strong.NeedsRehash(hash))
	assert.True(t, strong.NeedsRehash("garbage"))
}
