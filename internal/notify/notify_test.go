package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpireMillis(t *testing.T) {
	assert.Equal(t, int32(-1), expireMillis(0))
	assert.Equal(t, int32(-1), expireMillis(-time.Second))
	assert.Equal(t, int32(5000), expireMillis(5*time.Second))
	assert.Equal(t, int32(1<<31-1), expireMillis(1000*time.Hour))
}

func TestNopNotifier(t *testing.T) {
	id, err := nopNotifier{}.Notify(Notification{Summary: "x"})
	assert.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, nopNotifier{}.Dismiss(1))
}
