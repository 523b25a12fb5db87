package repository

import (
	"context"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_ListFiltersAndLiked(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	tech := testutil.CreateCategory(t, db, "tech")

	p1 := testutil.CreatePost(t, db, alice, "Go generics")
	p1.CategoryID = &tech.ID
	require.NoError(t, repo.Update(ctx, p1))
	p2 := testutil.CreatePost(t, db, bob, "Gardening")

	_, err := likes.Create(ctx, &models.Like{OwnerID: bob.ID, PostID: p1.ID})
	require.NoError(t, err)
	_, err = likes.Create(ctx, &models.Like{OwnerID: alice.ID, PostID: p1.ID})
	require.NoError(t, err)

	all, err := repo.List(ctx, PostFilter{}, bob.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, p2.ID, all[0].ID, "newest first")
	assert.False(t, all[0].Liked)
	assert.True(t, all[1].Liked)
	assert.Equal(t, 2, all[1].LikesCount)
	assert.Equal(t, "alice", all[1].Owner.Username)
	require.NotNil(t, all[1].Category)
	assert.Equal(t, "tech", all[1].Category.Name)

	found, err := repo.List(ctx, PostFilter{Search: "GENERICS"}, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p1.ID, found[0].ID)
	assert.False(t, found[0].Liked)

	found, err = repo.List(ctx, PostFilter{CategoryID: tech.ID}, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = repo.List(ctx, PostFilter{OwnerID: bob.ID}, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p2.ID, found[0].ID)

	found, err = repo.List(ctx, PostFilter{Page: Page{Limit: 1, Offset: 1}}, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p1.ID, found[0].ID)
}

func TestPostRepository_DetailImagesAndLikedUsers(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "Photos")

	for _, key := range []string{"posts/images/a.png", "posts/images/b.png", "posts/images/c.png"} {
		require.NoError(t, repo.AddImage(ctx, &models.PostImage{PostID: post.ID, Image: key}))
	}
	_, err := likes.Create(ctx, &models.Like{OwnerID: bob.ID, PostID: post.ID})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 3)
	assert.Equal(t, "posts/images/a.png", got.Images[0].Image)
	assert.Equal(t, 1, got.LikesCount)

	users, err := repo.LikedUsers(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	n, err := repo.CountByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByID(ctx, 999)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPostRepository_DeleteRemovesChildren(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "Doomed")
	require.NoError(t, repo.AddImage(ctx, &models.PostImage{PostID: post.ID, Image: "k"}))
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, OwnerID: alice.ID, Body: "hi"}).Error)
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, OwnerID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Favorite{PostID: post.ID, OwnerID: alice.ID}).Error)

	require.NoError(t, repo.Delete(ctx, post.ID))

	for _, m := range []any{&models.Post{}, &models.PostImage{}, &models.Comment{}, &models.Like{}, &models.Favorite{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n)
	}

	err := repo.Delete(ctx, post.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}
