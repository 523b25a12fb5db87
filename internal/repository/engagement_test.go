package repository

import (
	"context"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_UniquePerOwnerAndPost(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "Liked")

	first := &models.Like{OwnerID: alice.ID, PostID: post.ID}
	created, err := repo.Create(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)

	created, err = repo.Create(ctx, &models.Like{OwnerID: alice.ID, PostID: post.ID})
	require.NoError(t, err)
	assert.False(t, created)

	mine, err := repo.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Liked", mine[0].Post.Title)
	assert.Equal(t, "alice", mine[0].Owner.Username)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.PostID)

	require.NoError(t, repo.Delete(ctx, first.ID))
	err = repo.Delete(ctx, first.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestFavoriteRepository_AllowsDuplicates(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFavoriteRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "Saved")

	require.NoError(t, repo.Create(ctx, &models.Favorite{OwnerID: alice.ID, PostID: post.ID}))
	require.NoError(t, repo.Create(ctx, &models.Favorite{OwnerID: alice.ID, PostID: post.ID}))

	mine, err := repo.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Saved", mine[0].Post.Title)

	_, err = repo.GetByID(ctx, 404)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestCommentRepository_ListAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	p1 := testutil.CreatePost(t, db, alice, "First")
	p2 := testutil.CreatePost(t, db, alice, "Second")

	c1 := &models.Comment{PostID: p1.ID, OwnerID: bob.ID, Body: "one"}
	require.NoError(t, repo.Create(ctx, c1))
	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: p1.ID, OwnerID: alice.ID, Body: "two"}))
	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: p2.ID, OwnerID: bob.ID, Body: "three"}))

	onFirst, err := repo.ListByPost(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, onFirst, 2)
	assert.Equal(t, "one", onFirst[0].Body)
	assert.Equal(t, "bob", onFirst[0].Owner.Username)

	byBob, err := repo.List(ctx, CommentFilter{OwnerID: bob.ID})
	require.NoError(t, err)
	require.Len(t, byBob, 2)
	assert.Equal(t, "Second", byBob[0].Post.Title)

	got, err := repo.GetByID(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Post.Title)

	require.NoError(t, repo.Delete(ctx, c1.ID))
	_, err = repo.GetByID(ctx, c1.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestCategoryRepository_CreateAndList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCategoryRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Category{Name: "travel", Slug: "travel"}))
	require.NoError(t, repo.Create(ctx, &models.Category{Name: "art", Slug: "art"}))

	err := repo.Create(ctx, &models.Category{Name: "art", Slug: "art-2"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "art", list[0].Name)
}
