package server

import (
	"fmt"
	"net/http"
	"testing"

	"quill/internal/models"
	"quill/internal/service"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowEndpoints(t *testing.T) {
	env := newTestEnv(t)
	u1 := testutil.CreateUser(t, env.db, "u1")
	u2 := testutil.CreateUser(t, env.db, "u2")
	t1, t2 := env.token(u1), env.token(u2)
	followPath := fmt.Sprintf("/api/v1/accounts/%d/follow", u2.ID)
	unfollowPath := fmt.Sprintf("/api/v1/accounts/%d/unfollow", u2.ID)

	status, body := env.do(http.MethodPost, followPath, t1, nil)
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, "Successfully followed!", decode[map[string]string](t, body)["message"])

	status, body = env.do(http.MethodPost, followPath, t1, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You've already followed!", decode[models.ErrorResponse](t, body).Error)

	var edges int64
	require.NoError(t, env.db.Model(&models.Follow{}).Count(&edges).Error)
	assert.Equal(t, int64(1), edges)

	status, body = env.do(http.MethodGet, "/api/v1/accounts/followings", t1, nil)
	require.Equal(t, http.StatusOK, status)
	followings := decode[[]service.FollowView](t, body)
	require.Len(t, followings, 1)
	assert.Equal(t, u2.ID, followings[0].Following)
	assert.Equal(t, "u2", followings[0].FollowingUsername)

	status, body = env.do(http.MethodGet, "/api/v1/accounts/followers", t2, nil)
	require.Equal(t, http.StatusOK, status)
	followers := decode[[]service.FollowView](t, body)
	require.Len(t, followers, 1)
	assert.Equal(t, u1.ID, followers[0].Follower)
	assert.Equal(t, "u1", followers[0].FollowerUsername)

	status, _ = env.do(http.MethodDelete, unfollowPath, t1, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = env.do(http.MethodDelete, unfollowPath, t1, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You didn't followed to this account!", decode[models.ErrorResponse](t, body).Error)

	require.NoError(t, env.db.Model(&models.Follow{}).Count(&edges).Error)
	assert.Zero(t, edges)
}

func TestFollowEndpoints_SelfAndMissing(t *testing.T) {
	env := newTestEnv(t)
	u1 := testutil.CreateUser(t, env.db, "u1")
	token := env.token(u1)
	self := fmt.Sprintf("/api/v1/accounts/%d", u1.ID)

	status, body := env.do(http.MethodPost, self+"/follow", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You can't follow yourself!", decode[models.ErrorResponse](t, body).Error)

	status, body = env.do(http.MethodDelete, self+"/unfollow", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You can't unfollow yourself!", decode[models.ErrorResponse](t, body).Error)

	status, _ = env.do(http.MethodPost, "/api/v1/accounts/4242/follow", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(http.MethodPost, "/api/v1/accounts/4242/follow", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
