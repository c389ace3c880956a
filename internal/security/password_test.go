package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *PasswordHasher {
	// Cheap parameters keep the suite fast; the digest format is identical.
	return NewPasswordHasher(Argon2Params{Time: 1, MemoryKiB: 8 * 1024, Threads: 1})
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	hasher := newTestHasher()
	passwords := []string{"pw123", "correct-horse-battery-staple", "", "ünïcødé pässwörd", strings.Repeat("x", 128)}

	for _, password := range passwords {
		digest, err := hasher.Hash(password)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(digest, "$argon2id$v=19$"), digest)
		assert.True(t, hasher.Verify(password, digest), "password %q should verify", password)
	}
}

func TestPasswordHasher_FreshSaltPerCall(t *testing.T) {
	t.Parallel()

	hasher := newTestHasher()

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, hasher.Verify("same-password", first))
	require.True(t, hasher.Verify("same-password", second))
}

func TestPasswordHasher_WrongPassword(t *testing.T) {
	t.Parallel()

	hasher := newTestHasher()
	digest, err := hasher.Hash("pw123")
	require.NoError(t, err)

	for _, candidate := range []string{"pw124", "PW123", "pw123 ", "", "pw12"} {
		assert.False(t, hasher.Verify(candidate, digest), "candidate %q must not verify", candidate)
	}
}

func TestPasswordHasher_EncodesConfiguredParameters(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(Argon2Params{Time: 2, MemoryKiB: 16 * 1024, Threads: 2})
	digest, err := hasher.Hash("test")
	require.NoError(t, err)

	parts := strings.Split(digest, "$")
	require.Len(t, parts, 6)
	require.Equal(t, "argon2id", parts[1])
	require.Equal(t, "v=19", parts[2])
	require.Equal(t, "m=16384,t=2,p=2", parts[3])
}

func TestPasswordHasher_VerifiesDigestsFromOtherParameters(t *testing.T) {
	t.Parallel()

	digest, err := NewPasswordHasher(Argon2Params{Time: 2, MemoryKiB: 16 * 1024, Threads: 1}).Hash("pw123")
	require.NoError(t, err)

	require.True(t, newTestHasher().Verify("pw123", digest))
}

func TestPasswordHasher_VerifiesBcryptDigests(t *testing.T) {
	t.Parallel()

	legacy, err := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.MinCost)
	require.NoError(t, err)

	hasher := newTestHasher()
	require.True(t, hasher.Verify("pw123", string(legacy)))
	require.False(t, hasher.Verify("pw124", string(legacy)))
}

func TestPasswordHasher_MalformedDigestsNeverVerify(t *testing.T) {
	t.Parallel()

	hasher := newTestHasher()
	valid, err := hasher.Hash("pw123")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")

	tests := []struct {
		name   string
		digest string
	}{
		{"empty", ""},
		{"plaintext", "pw123"},
		{"wrong algorithm", "$argon2i$v=19$m=8192,t=1,p=1$" + parts[4] + "$" + parts[5]},
		{"wrong version", "$argon2id$v=16$m=8192,t=1,p=1$" + parts[4] + "$" + parts[5]},
		{"too few parts", "$argon2id$v=19$m=8192,t=1,p=1"},
		{"too many parts", valid + "$extra"},
		{"zero time", "$argon2id$v=19$m=8192,t=0,p=1$" + parts[4] + "$" + parts[5]},
		{"zero threads", "$argon2id$v=19$m=8192,t=1,p=0$" + parts[4] + "$" + parts[5]},
		{"huge memory", "$argon2id$v=19$m=4294967295,t=1,p=1$" + parts[4] + "$" + parts[5]},
		{"garbage params", "$argon2id$v=19$m=abc,t=1,p=1$" + parts[4] + "$" + parts[5]},
		{"bad salt encoding", "$argon2id$v=19$m=8192,t=1,p=1$!!!!$" + parts[5]},
		{"short salt", "$argon2id$v=19$m=8192,t=1,p=1$YWJj$" + parts[5]},
		{"bad hash encoding", "$argon2id$v=19$m=8192,t=1,p=1$" + parts[4] + "$%%%%"},
		{"truncated hash", valid[:len(valid)-10]},
		{"truncated bcrypt", "$2a$10$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.False(t, hasher.Verify("pw123", tt.digest))
			})
		})
	}
}
