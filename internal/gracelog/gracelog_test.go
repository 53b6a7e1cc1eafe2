package gracelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetWithoutInitReturnsNoOpLogger(t *testing.T) {
	mu.Lock()
	base = nil
	loggers = make(map[Category]*zap.SugaredLogger)
	mu.Unlock()

	log := Get(CategoryDriver)
	assert.NotNil(t, log)
	log.Debugw("no-op, must not panic")
}

func TestInitThenGetReturnsNamedLoggerPerCategory(t *testing.T) {
	require.NoError(t, Init(true))
	a := Get(CategoryEmit)
	b := Get(CategoryEmit)
	assert.Same(t, a, b)

	c := Get(CategoryStore)
	assert.NotSame(t, a, c)
}
