package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	body := []byte(`{"action":"echo"}`)
	secret := []byte("test-secret")

	header := Sign(body, secret)

	assert.True(t, strings.HasPrefix(header, "sha256="))
	assert.Len(t, header, len("sha256=")+64)
	// Deterministic for fixed inputs.
	assert.Equal(t, header, Sign(body, secret))
}

func TestVerify_RoundTrip(t *testing.T) {
	body := []byte(`{"action":"echo","mode":"dry_run"}`)
	secret := []byte("test-secret")

	header := Sign(body, secret)
	assert.True(t, Verify(body, header, secret))
}

func TestVerify_Failures(t *testing.T) {
	body := []byte(`{"action":"echo"}`)
	secret := []byte("test-secret")
	valid := Sign(body, secret)

	tests := []struct {
		name   string
		body   []byte
		header string
		secret []byte
	}{
		{
			name:   "wrong secret",
			body:   body,
			header: valid,
			secret: []byte("other-secret"),
		},
		{
			name:   "tampered body",
			body:   []byte(`{"action":"echo" }`),
			header: valid,
			secret: secret,
		},
		{
			name:   "missing prefix",
			body:   body,
			header: strings.TrimPrefix(valid, "sha256="),
			secret: secret,
		},
		{
			name:   "wrong prefix",
			body:   body,
			header: "sha512=" + strings.TrimPrefix(valid, "sha256="),
			secret: secret,
		},
		{
			name:   "malformed hex",
			body:   body,
			header: "sha256=not-hex-at-all",
			secret: secret,
		},
		{
			name:   "empty header",
			body:   body,
			header: "",
			secret: secret,
		},
		{
			name:   "truncated digest",
			body:   body,
			header: valid[:len(valid)-2],
			secret: secret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Verify(tt.body, tt.header, tt.secret))
		})
	}
}

func TestVerify_SingleBitFlip(t *testing.T) {
	body := []byte(`{"action":"record_update"}`)
	secret := []byte("test-secret")
	valid := Sign(body, secret)

	// Flipping any hex digit of the digest must fail verification.
	digest := strings.TrimPrefix(valid, "sha256=")
	for i := 0; i < len(digest); i++ {
		mutated := []byte(digest)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		require.False(t, Verify(body, "sha256="+string(mutated), secret),
			"mutated digit %d must not verify", i)
	}
}

func TestVerify_EmptyBody(t *testing.T) {
	secret := []byte("test-secret")
	header := Sign(nil, secret)

	assert.True(t, Verify(nil, header, secret))
	assert.False(t, Verify([]byte("x"), header, secret))
}
