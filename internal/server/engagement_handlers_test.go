package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"quill/internal/models"
	"quill/internal/notifications"
	"quill/internal/service"
	"quill/internal/testutil"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeEndpoints(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "writer")
	fan := testutil.CreateUser(t, env.db, "fan")
	post := testutil.CreatePost(t, env.db, owner, "Liked")
	fanToken := env.token(fan)

	status, body := env.do(http.MethodPost, "/api/v1/likes", fanToken, map[string]uint{"post": post.ID})
	require.Equal(t, http.StatusCreated, status, string(body))
	like := decode[service.EngagementView](t, body)
	assert.Equal(t, "fan", like.OwnerUsername)
	assert.Equal(t, "Liked", like.PostTitle)

	status, body = env.do(http.MethodPost, "/api/v1/likes", fanToken, map[string]uint{"post": post.ID})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You already liked post!", decode[models.ErrorResponse](t, body).Error)

	status, _ = env.do(http.MethodPost, "/api/v1/likes", fanToken, map[string]uint{"post": 9999})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(http.MethodGet, "/api/v1/likes", fanToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]service.EngagementView](t, body), 1)

	status, body = env.do(http.MethodGet, "/api/v1/likes", env.token(owner), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]service.EngagementView](t, body))

	likePath := fmt.Sprintf("/api/v1/likes/%d", like.ID)
	status, _ = env.do(http.MethodDelete, likePath, env.token(owner), nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(http.MethodDelete, likePath, fanToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = env.do(http.MethodDelete, likePath, fanToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(http.MethodGet, "/api/v1/likes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestFavoriteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "writer")
	token := env.token(owner)
	post := testutil.CreatePost(t, env.db, owner, "Saved")

	for i := 0; i < 2; i++ {
		status, body := env.do(http.MethodPost, "/api/v1/favorites", token, map[string]uint{"post": post.ID})
		require.Equal(t, http.StatusCreated, status, string(body))
	}

	status, body := env.do(http.MethodGet, "/api/v1/favorites", token, nil)
	require.Equal(t, http.StatusOK, status)
	favorites := decode[[]service.EngagementView](t, body)
	require.Len(t, favorites, 2)

	status, _ = env.do(http.MethodPost, "/api/v1/favorites", token, map[string]uint{"post": 31337})
	assert.Equal(t, http.StatusNotFound, status)

	stranger := env.token(testutil.CreateUser(t, env.db, "stranger"))
	path := fmt.Sprintf("/api/v1/favorites/%d", favorites[0].ID)
	status, _ = env.do(http.MethodDelete, path, stranger, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestCommentEndpoints(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "writer")
	reader := testutil.CreateUser(t, env.db, "reader")
	post := testutil.CreatePost(t, env.db, owner, "Topic")
	other := testutil.CreatePost(t, env.db, owner, "Elsewhere")
	readerToken := env.token(reader)

	status, body := env.do(http.MethodPost, "/api/v1/comments", readerToken, map[string]any{"post": post.ID, "body": "great"})
	require.Equal(t, http.StatusCreated, status, string(body))
	comment := decode[service.CommentView](t, body)
	assert.Equal(t, "reader", comment.OwnerUsername)

	status, _ = env.do(http.MethodPost, "/api/v1/comments", readerToken, map[string]any{"post": other.ID, "body": "meh"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = env.do(http.MethodPost, "/api/v1/comments", readerToken, map[string]any{"post": 999, "body": "lost"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(http.MethodPost, "/api/v1/comments", "", map[string]any{"post": post.ID, "body": "anon"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = env.do(http.MethodGet, "/api/v1/comments", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]service.CommentView](t, body), 2)

	status, body = env.do(http.MethodGet, fmt.Sprintf("/api/v1/comments?post=%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]service.CommentView](t, body), 1)

	path := fmt.Sprintf("/api/v1/comments/%d", comment.ID)
	status, body = env.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "great", decode[service.CommentView](t, body).Body)

	status, _ = env.do(http.MethodDelete, path, env.token(owner), nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(http.MethodDelete, path, readerToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = env.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCategoryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(testutil.CreateUser(t, env.db, "editor"))

	status, _ := env.do(http.MethodPost, "/api/v1/categories", "", map[string]string{"name": "Art"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := env.do(http.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Street Art"})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, "street-art", decode[models.Category](t, body).Slug)

	status, _ = env.do(http.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Street Art"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Category](t, body), 1)

	// The list is served from Redis once warmed.
	assert.NotEmpty(t, env.mr.Keys())
}

func TestNotificationsPublishedToOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "writer")
	fan := testutil.CreateUser(t, env.db, "fan")
	post := testutil.CreatePost(t, env.db, owner, "Ping")

	rdb := redis.NewClient(&redis.Options{Addr: env.mr.Addr()})
	defer func() { _ = rdb.Close() }()
	ctx := context.Background()
	sub := rdb.Subscribe(ctx, notifications.UserChannel(owner.ID))
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	status, _ := env.do(http.MethodPost, "/api/v1/likes", env.token(fan), map[string]uint{"post": post.ID})
	require.Equal(t, http.StatusCreated, status)

	select {
	case msg := <-sub.Channel():
		var event notifications.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, notifications.EventLikeCreated, event.Type)
		assert.Equal(t, fan.ID, event.ActorID)
		assert.Equal(t, post.ID, event.PostID)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification received")
	}
}
