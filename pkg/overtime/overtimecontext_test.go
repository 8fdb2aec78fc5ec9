package overtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/LINBIT/mkiso/pkg/overtime"
)

func TestOutlivesParent(t *testing.T) {
	parent, parentCancel := context.WithCancel(context.Background())

	ctx, cancel := overtime.WithOvertimeContext(parent, 50*time.Millisecond)
	defer cancel()

	parentCancel()
	assert.NoError(t, ctx.Err())

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not cancelled after overtime")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestValidWhileParentIsValid(t *testing.T) {
	parent, parentCancel := context.WithCancel(context.Background())
	defer parentCancel()

	ctx, cancel := overtime.WithOvertimeContext(parent, time.Millisecond)
	defer cancel()

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, ctx.Err())
}

func TestCancel(t *testing.T) {
	ctx, cancel := overtime.WithOvertimeContext(context.Background(), time.Hour)
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
