package pagelens_test

import (
	"testing"
	"time"

	"github.com/fwojciec/pagelens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Attempts(t *testing.T) {
	t.Parallel()

	t.Run("zero means exactly one attempt", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 1, pagelens.RetryPolicy{MaxAttempts: 0}.Attempts())
	})

	t.Run("returns configured attempts", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 3, pagelens.DefaultRetryPolicy().Attempts())
	})
}

func TestRetryPolicy_Wait(t *testing.T) {
	t.Parallel()

	t.Run("follows clamped exponential backoff", func(t *testing.T) {
		t.Parallel()

		p := pagelens.DefaultRetryPolicy()

		assert.Equal(t, 2*time.Second, p.Wait(1)) // 1s clamped up to min
		assert.Equal(t, 2*time.Second, p.Wait(2))
		assert.Equal(t, 4*time.Second, p.Wait(3))
		assert.Equal(t, 8*time.Second, p.Wait(4))
		assert.Equal(t, 10*time.Second, p.Wait(5)) // 16s clamped down to max
	})

	t.Run("waits are non-decreasing and bounded", func(t *testing.T) {
		t.Parallel()

		p := pagelens.DefaultRetryPolicy()
		prev := time.Duration(0)
		for i := 1; i <= 200; i++ {
			w := p.Wait(i)
			assert.GreaterOrEqual(t, w, prev)
			assert.GreaterOrEqual(t, w, p.MinWait)
			assert.LessOrEqual(t, w, p.MaxWait)
			prev = w
		}
	})

	t.Run("applies multiplier", func(t *testing.T) {
		t.Parallel()

		p := pagelens.RetryPolicy{MaxAttempts: 3, Multiplier: 3, MaxWait: time.Minute}

		assert.Equal(t, 3*time.Second, p.Wait(1))
		assert.Equal(t, 6*time.Second, p.Wait(2))
	})
}

func TestRetryPolicy_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, pagelens.DefaultRetryPolicy().Validate())

	err := pagelens.RetryPolicy{MinWait: 5 * time.Second, MaxWait: time.Second}.Validate()
	require.Error(t, err)
	assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))
}
