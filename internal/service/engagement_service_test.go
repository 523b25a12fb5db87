package service

import (
	"context"
	"testing"

	"quill/internal/models"
	"quill/internal/notifications"
	"quill/internal/repository"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeServiceDuplicateLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "writer")
	fan := testutil.CreateUser(t, f.db, "fan")
	post, err := f.posts.CreatePost(ctx, CreatePostInput{
		OwnerID: owner.ID, Title: "Pic", Body: "b", Preview: testutil.PNG(2, 2),
	})
	require.NoError(t, err)

	view, err := f.likes.Like(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, fan.ID, view.Owner)
	assert.Equal(t, "fan", view.OwnerUsername)
	assert.Equal(t, "Pic", view.PostTitle)
	assert.Equal(t, post.Preview, view.PostPreview)

	_, err = f.likes.Like(ctx, fan.ID, post.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyLiked)
	assert.Equal(t, 400, models.StatusFor(err))

	var n int64
	require.NoError(t, f.db.Model(&models.Like{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	events := f.notifier.For(owner.ID)
	require.Len(t, events, 1)
	assert.Equal(t, notifications.EventLikeCreated, events[0].Type)

	// Liking your own post does not notify yourself.
	_, err = f.likes.Like(ctx, owner.ID, post.ID)
	require.NoError(t, err)
	assert.Len(t, f.notifier.For(owner.ID), 1)

	_, err = f.likes.Like(ctx, fan.ID, 9999)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestLikeServiceUnlikeOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "writer")
	fan := testutil.CreateUser(t, f.db, "fan")
	post := testutil.CreatePost(t, f.db, owner, "Post")

	view, err := f.likes.Like(ctx, fan.ID, post.ID)
	require.NoError(t, err)

	assert.Equal(t, 403, models.StatusFor(f.likes.Unlike(ctx, owner.ID, view.ID)))

	mine, err := f.likes.ListMine(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Post", mine[0].PostTitle)
	assert.Empty(t, mine[0].PostPreview)

	require.NoError(t, f.likes.Unlike(ctx, fan.ID, view.ID))
	assert.Equal(t, 404, models.StatusFor(f.likes.Unlike(ctx, fan.ID, view.ID)))

	// Unliking frees the pair for a new like.
	_, err = f.likes.Like(ctx, fan.ID, post.ID)
	assert.NoError(t, err)
}

func TestFavoriteServiceAllowsRepeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "writer")
	post := testutil.CreatePost(t, f.db, owner, "Keep")

	first, err := f.favorites.Add(ctx, owner.ID, post.ID)
	require.NoError(t, err)
	_, err = f.favorites.Add(ctx, owner.ID, post.ID)
	require.NoError(t, err)

	mine, err := f.favorites.ListMine(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = f.favorites.Add(ctx, owner.ID, 777)
	assert.Equal(t, 404, models.StatusFor(err))

	stranger := testutil.CreateUser(t, f.db, "stranger")
	assert.Equal(t, 403, models.StatusFor(f.favorites.Remove(ctx, stranger.ID, first.ID)))
	require.NoError(t, f.favorites.Remove(ctx, owner.ID, first.ID))
}

func TestCommentServiceLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "writer")
	reader := testutil.CreateUser(t, f.db, "reader")
	post := testutil.CreatePost(t, f.db, owner, "Discuss")

	_, err := f.comments.CreateComment(ctx, CreateCommentInput{OwnerID: reader.ID, PostID: 404, Body: "hi"})
	assert.Equal(t, 404, models.StatusFor(err))
	_, err = f.comments.CreateComment(ctx, CreateCommentInput{OwnerID: reader.ID, PostID: post.ID, Body: "  "})
	assert.Equal(t, 400, models.StatusFor(err))

	c, err := f.comments.CreateComment(ctx, CreateCommentInput{OwnerID: reader.ID, PostID: post.ID, Body: "insightful"})
	require.NoError(t, err)
	assert.Equal(t, "reader", c.OwnerUsername)
	assert.Equal(t, post.ID, c.Post)

	events := f.notifier.For(owner.ID)
	require.Len(t, events, 1)
	assert.Equal(t, notifications.EventCommentCreated, events[0].Type)
	assert.Equal(t, c.ID, events[0].CommentID)

	list, err := f.comments.ListComments(ctx, post.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.Equal(t, 403, models.StatusFor(f.comments.DeleteComment(ctx, owner.ID, c.ID)))
	require.NoError(t, f.comments.DeleteComment(ctx, reader.ID, c.ID))
	_, err = f.comments.GetComment(ctx, c.ID)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestCategoryServiceCreate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(repository.NewCategoryRepository(db, nil))
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, "  Food & Drink ")
	require.NoError(t, err)
	assert.Equal(t, "Food & Drink", c.Name)
	assert.Equal(t, "food-drink", c.Slug)

	_, err = svc.CreateCategory(ctx, "Food & Drink")
	assert.Equal(t, 400, models.StatusFor(err))
	_, err = svc.CreateCategory(ctx, "")
	assert.Equal(t, 400, models.StatusFor(err))
	_, err = svc.CreateCategory(ctx, "!!!")
	assert.Equal(t, 400, models.StatusFor(err))

	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
