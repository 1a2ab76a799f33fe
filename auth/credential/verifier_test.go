package credential

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-press/inkwell/crypt/hashing"
)

// fast argon2 parameters keep the verifier tests responsive
var testArgon2 = hashing.Argon2Config{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func testVerifier(t *testing.T, minDurationMs int) *Verifier {
	t.Helper()
	hash, err := hashing.Argon2IdCreateHash("hunter2"+"pepper-secret", testArgon2)
	require.NoError(t, err)

	v, err := NewVerifier(&Config{
		Username:      "admin",
		PasswordHash:  hash,
		Pepper:        "pepper-secret",
		MinDurationMs: minDurationMs,
	})
	require.NoError(t, err)
	return v
}

func TestVerify(t *testing.T) {
	v := testVerifier(t, 10)
	ctx := context.Background()

	assert.True(t, v.Verify(ctx, "admin", "hunter2"))
	assert.False(t, v.Verify(ctx, "admin", "wrong"))
	assert.False(t, v.Verify(ctx, "intruder", "hunter2"))
	assert.False(t, v.Verify(ctx, "intruder", "wrong"))
}

func TestVerifyMalformedInput(t *testing.T) {
	v := testVerifier(t, 10)
	ctx := context.Background()

	assert.False(t, v.Verify(ctx, "", "hunter2"))
	assert.False(t, v.Verify(ctx, "admin", ""))
	assert.False(t, v.Verify(ctx, strings.Repeat("a", 300), "hunter2"))
	assert.False(t, v.Verify(ctx, "admin", strings.Repeat("a", 300)))
}

func TestVerifyDurationFloor(t *testing.T) {
	v := testVerifier(t, 100)
	ctx := context.Background()

	started := time.Now()
	v.Verify(ctx, "admin", "hunter2")
	assert.GreaterOrEqual(t, time.Since(started), 100*time.Millisecond)
}

func TestVerifyTimingUniformity(t *testing.T) {
	v := testVerifier(t, 100)
	ctx := context.Background()

	timed := func(username, password string) time.Duration {
		started := time.Now()
		v.Verify(ctx, username, password)
		return time.Since(started)
	}

	// bad-username and bad-password rejections pad out to the same
	// floor; tolerance is generous to absorb scheduler noise
	badUser := timed("intruder", "hunter2")
	badPass := timed("admin", "wrong")

	diff := badUser - badPass
	if diff < 0 {
		diff = -diff
	}
	assert.Less(t, diff, 50*time.Millisecond)
}

func TestVerifyContextCancel(t *testing.T) {
	v := testVerifier(t, 500)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// a cancelled context cuts the floor short but the result is
	// still correct
	started := time.Now()
	assert.True(t, v.Verify(ctx, "admin", "hunter2"))
	assert.Less(t, time.Since(started), 500*time.Millisecond)
}

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingUsername)

	cfg.Username = "admin"
	assert.ErrorIs(t, cfg.Validate(), ErrMissingPasswordHash)

	cfg.PasswordHash = "$argon2id$..."
	assert.NoError(t, cfg.Validate())
}

func TestPepperFromEnv(t *testing.T) {
	t.Setenv("INKWELL_TEST_PEPPER", "env-pepper")

	hash, err := hashing.Argon2IdCreateHash("hunter2"+"env-pepper", testArgon2)
	require.NoError(t, err)

	v, err := NewVerifier(&Config{
		Username:      "admin",
		PasswordHash:  hash,
		Pepper:        "ignored-inline",
		PepperEnvVar:  "INKWELL_TEST_PEPPER",
		MinDurationMs: 10,
	})
	require.NoError(t, err)

	assert.True(t, v.Verify(context.Background(), "admin", "hunter2"))
}
