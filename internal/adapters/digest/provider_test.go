package digest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotsutc/go_hash_avalanche/internal/adapters/logger"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(DefaultAlgorithms(), logger.NewNopLogger())
	require.NoError(t, err)
	return p
}

func TestAlgorithms(t *testing.T) {
	p := newTestProvider(t)
	assert.Equal(t,
		[]string{"md5", "sha1", "sha256", "sha512", "sha3-256", "sha3-512", "blake2b-256"},
		p.Algorithms(),
	)
}

func TestCompareKnownDigests(t *testing.T) {
	p := newTestProvider(t)

	records, err := p.Compare(context.Background(), "Hello Blockchain", "hello Blockchain")
	require.NoError(t, err)
	require.Len(t, records, 7)

	byName := make(map[string]int)
	for i, r := range records {
		byName[r.Algorithm] = i
	}

	sha256Rec := records[byName["sha256"]]
	assert.Equal(t, "7cf88f2ee398c0b7c0e760a1dccaf3571e0baccf310f11fe3bdfd0b09675ea75", sha256Rec.OriginalDigest)
	assert.Equal(t, "7e4c73bd719b21390ac6cdc3c4c5cea8fab62141b512906c152b02da210452b9", sha256Rec.ModifiedDigest)
	assert.Equal(t, 125, sha256Rec.ChangedBits)
	assert.Equal(t, 256, sha256Rec.TotalBits)

	sha3Rec := records[byName["sha3-256"]]
	assert.Equal(t, "20258414611c0f4aa3f8aa2ea3d672fb9373c3409b4042b4a4843f3c9787ab60", sha3Rec.OriginalDigest)
	assert.Equal(t, 139, sha3Rec.ChangedBits)

	blakeRec := records[byName["blake2b-256"]]
	assert.Equal(t, "250280002d88faa17d3c01a361c7a214d57fc7686e0b1009379832d2eeb07e34", blakeRec.OriginalDigest)
	assert.Equal(t, 130, blakeRec.ChangedBits)

	md5Rec := records[byName["md5"]]
	assert.Equal(t, 62, md5Rec.ChangedBits)
	assert.Equal(t, 128, md5Rec.TotalBits)

	sha512Rec := records[byName["sha512"]]
	assert.Equal(t, 262, sha512Rec.ChangedBits)
	assert.Equal(t, 512, sha512Rec.TotalBits)
}

func TestCompareTotalBitsMatchDigestWidth(t *testing.T) {
	p := newTestProvider(t)

	records, err := p.Compare(context.Background(), "a", "b")
	require.NoError(t, err)

	want := map[string]int{
		"md5":         128,
		"sha1":        160,
		"sha256":      256,
		"sha512":      512,
		"sha3-256":    256,
		"sha3-512":    512,
		"blake2b-256": 256,
	}
	for _, r := range records {
		assert.Equal(t, want[r.Algorithm], r.TotalBits, r.Algorithm)
		assert.Equal(t, len(r.OriginalDigest)*4, r.TotalBits, r.Algorithm)
	}
}

func TestCompareIdenticalInputs(t *testing.T) {
	p := newTestProvider(t)

	records, err := p.Compare(context.Background(), "same", "same")
	require.NoError(t, err)
	for _, r := range records {
		assert.Zero(t, r.ChangedBits, r.Algorithm)
		assert.Equal(t, r.OriginalDigest, r.ModifiedDigest, r.Algorithm)
	}
}

func TestCompareCancelledContext(t *testing.T) {
	p := newTestProvider(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Compare(ctx, "a", "b")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProviderValidation(t *testing.T) {
	_, err := NewProvider(nil, logger.NewNopLogger())
	assert.Error(t, err)

	_, err = NewProvider([]Algorithm{{Name: ""}}, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestChangedBits(t *testing.T) {
	assert.Equal(t, 0, ChangedBits([]byte{0xff, 0x00}, []byte{0xff, 0x00}))
	assert.Equal(t, 16, ChangedBits([]byte{0xff, 0xff}, []byte{0x00, 0x00}))
	assert.Equal(t, 1, ChangedBits([]byte{0x01}, []byte{0x00}))
}
