package errx

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	base := io.ErrUnexpectedEOF
	tests := []struct {
		err  error
		kind Kind
	}{
		{err: Config(base), kind: KindConfig},
		{err: IO(base), kind: KindIO},
		{err: CloudUpload(base), kind: KindCloudUpload},
		{err: RelayDelivery(base), kind: KindRelayDelivery},
		{err: NodeResolution("ask_name"), kind: KindNodeResolution},
		{err: fmt.Errorf("wrapped: %w", IO(base)), kind: KindIO},
		{err: base, kind: KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err), tt.err.Error())
		assert.True(t, IsKind(tt.err, tt.kind))
	}
	assert.False(t, IsKind(nil, KindUnknown))
	assert.True(t, errors.Is(IO(base), io.ErrUnexpectedEOF))
}

func TestNodeResolutionCarriesStack(t *testing.T) {
	err := NodeResolution("nowhere")
	assert.Equal(t, "nowhere", err.Node)
	assert.Contains(t, err.Error(), `"nowhere"`)
	assert.NotContains(t, err.Error(), "error_test.go")
	assert.Contains(t, fmt.Sprintf("%+v", err), "error_test.go")
}

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))
	assert.ErrorIs(t, WrapRedis(redis.Nil), redis.Nil)
	assert.Equal(t, KindUnknown, KindOf(WrapRedis(redis.Nil)))
	assert.Equal(t, KindStore, KindOf(WrapRedis(errors.New("conn refused"))))
}
