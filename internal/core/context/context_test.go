package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetUserID(ctx))
	assert.False(t, HasRole(ctx, "SysAdmin"))

	ctx = WithUser(ctx, &UserContext{UserID: "u1", UserName: "admin", Roles: []string{"SysAdmin"}})
	assert.Equal(t, "u1", GetUserID(ctx))
	assert.Equal(t, "admin", GetUserName(ctx))
	assert.True(t, HasRole(ctx, "SysAdmin"))
	assert.False(t, HasRole(ctx, "StoreAdmin"))
}

func TestTraceContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	tc := NewTraceContext()
	ctx = WithTrace(ctx, tc)
	assert.Equal(t, tc.TraceID, GetTraceID(ctx))
	assert.Equal(t, tc.RequestID, GetRequestID(ctx))
}
