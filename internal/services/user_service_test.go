package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	svc      *UserService
	graph    *SocialGraph
	store    *fakeRelationshipStore
	users    *fakeUserRepository
	content  *fakeContentStore
	messages *fakeMessageRepository
	tx       *fakeTransactor
}

func newUserFixture() *userFixture {
	f := &userFixture{
		store:    newFakeRelationshipStore(),
		users:    newFakeUserRepository(),
		content:  &fakeContentStore{},
		messages: &fakeMessageRepository{},
	}
	f.graph = NewSocialGraph(f.store, UserDirectoryFunc(f.users.Exists), nil)
	f.tx = &fakeTransactor{participants: []interface{ snapshot() func() }{f.store, f.users, f.content, f.messages}}
	f.svc = NewUserService(UserServiceDeps{
		Users:      f.users,
		Graph:      f.graph,
		Content:    f.content,
		Messages:   f.messages,
		Tx:         f.tx,
		BcryptCost: bcrypt.MinCost,
	})
	return f
}

func validNewUser() models.NewUser {
	return models.NewUser{
		Name:                 "Example User",
		Username:             "example_1",
		Email:                "User@Example.COM",
		Password:             "foobar",
		PasswordConfirmation: "foobar",
	}
}

func TestRegister(t *testing.T) {
	f := newUserFixture()

	user, err := f.svc.Register(context.Background(), validNewUser())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "user@example.com", user.Email)
	assert.NotEqual(t, "foobar", user.PasswordDigest)
	assert.True(t, VerifyPassword(user.PasswordDigest, "foobar"))
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.NewUser)
	}{
		{"blank name", func(u *models.NewUser) { u.Name = "   " }},
		{"long name", func(u *models.NewUser) { u.Name = strings.Repeat("a", 51) }},
		{"long username", func(u *models.NewUser) { u.Username = "abcdefghijklmnop" }},
		{"username with punctuation", func(u *models.NewUser) { u.Username = "foo.bar" }},
		{"bad email", func(u *models.NewUser) { u.Email = "user@example,com" }},
		{"short password", func(u *models.NewUser) { u.Password, u.PasswordConfirmation = "foo", "foo" }},
		{"confirmation mismatch", func(u *models.NewUser) { u.PasswordConfirmation = "barfoo" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture()
			req := validNewUser()
			tt.mutate(&req)

			_, err := f.svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validNewUser())
	require.NoError(t, err)

	dup := validNewUser()
	dup.Username = "another"
	dup.Email = "USER@example.com"
	_, err = f.svc.Register(ctx, dup)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestAuthenticate(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	registered, err := f.svc.Register(ctx, validNewUser())
	require.NoError(t, err)

	user, err := f.svc.Authenticate(ctx, "user@example.com", "foobar")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = f.svc.Authenticate(ctx, "user@example.com", "wrong")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = f.svc.Authenticate(ctx, "nobody@example.com", "foobar")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestSearchOrdersByUsername(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	for _, name := range []string{"carol", "alice", "bob", "alicia"} {
		req := validNewUser()
		req.Username = name
		req.Email = name + "@example.com"
		_, err := f.svc.Register(ctx, req)
		require.NoError(t, err)
	}

	users, total, err := f.svc.Search(ctx, "ali", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "alicia", users[1].Username)
}

func TestDeleteCascades(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.users.seed(1, 2, 3)
	const a, b, c = 1, 2, 3

	_, err := f.graph.Follow(ctx, a, b)
	require.NoError(t, err)
	_, err = f.graph.Follow(ctx, c, a)
	require.NoError(t, err)
	_, err = f.graph.Follow(ctx, b, c)
	require.NoError(t, err)
	f.content.add(a, time.Now())
	f.content.add(b, time.Now())
	require.NoError(t, f.messages.CreateMessage(ctx, &models.Message{FromUserID: c, ToUserID: a, Content: "hi"}))

	require.NoError(t, f.svc.Delete(ctx, a))

	ab, err := f.graph.IsFollowing(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, ab)
	ca, err := f.graph.IsFollowing(ctx, c, a)
	require.NoError(t, err)
	assert.False(t, ca)
	bc, err := f.graph.IsFollowing(ctx, b, c)
	require.NoError(t, err)
	assert.True(t, bc)

	exists, err := f.svc.UserExists(ctx, a)
	require.NoError(t, err)
	assert.False(t, exists)
	count, err := f.content.CountByAuthors(ctx, []uint{a})
	require.NoError(t, err)
	assert.Zero(t, count)
	_, inbox, err := f.messages.GetReceived(ctx, a, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, inbox)
	assert.Equal(t, 1, f.tx.commits)
}

func TestDeleteRollsBackOnFailure(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.users.seed(1, 2)

	_, err := f.graph.Follow(ctx, 1, 2)
	require.NoError(t, err)
	f.content.add(1, time.Now())
	f.users.deleteErr = apperror.New(apperror.TransientStore, "connection lost", nil)

	err = f.svc.Delete(ctx, 1)
	assert.ErrorIs(t, err, apperror.ErrTransientStore)
	assert.Equal(t, 1, f.tx.rollbacks)

	following, err := f.graph.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, following)
	count, err := f.content.CountByAuthors(ctx, []uint{1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteUnknownUser(t *testing.T) {
	f := newUserFixture()

	err := f.svc.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Zero(t, f.tx.commits+f.tx.rollbacks)
}

// newExternalStoresFixture mirrors the Neo4j + MongoDB wiring: the graph and
// content stores commit on their own, so the transaction cannot restore them.
func newExternalStoresFixture() *userFixture {
	f := newUserFixture()
	f.store.external = true
	f.content.external = true
	f.tx.participants = []interface{ snapshot() func() }{f.users, f.messages}
	return f
}

func TestDeleteExternalStoresUntouchedWhenPostgresFails(t *testing.T) {
	f := newExternalStoresFixture()
	ctx := context.Background()
	f.users.seed(1, 2)

	_, err := f.graph.Follow(ctx, 1, 2)
	require.NoError(t, err)
	f.content.add(1, time.Now())
	f.users.deleteErr = apperror.New(apperror.TransientStore, "serialization failure", nil)

	err = f.svc.Delete(ctx, 1)
	assert.ErrorIs(t, err, apperror.ErrTransientStore)

	exists, err := f.svc.UserExists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, exists)
	following, err := f.graph.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, following)
	count, err := f.content.CountByAuthors(ctx, []uint{1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteExternalStoreFailureKeepsUser(t *testing.T) {
	f := newExternalStoresFixture()
	ctx := context.Background()
	f.users.seed(1, 2)

	_, err := f.graph.Follow(ctx, 2, 1)
	require.NoError(t, err)
	require.NoError(t, f.messages.CreateMessage(ctx, &models.Message{FromUserID: 2, ToUserID: 1, Content: "hi"}))
	f.store.err = apperror.New(apperror.TransientStore, "graph unavailable", nil)

	err = f.svc.Delete(ctx, 1)
	assert.ErrorIs(t, err, apperror.ErrTransientStore)
	assert.Equal(t, 1, f.tx.rollbacks)

	exists, err := f.svc.UserExists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, exists)
	_, inbox, err := f.messages.GetReceived(ctx, 1, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inbox)
}

func TestDeleteWithExternalStores(t *testing.T) {
	f := newExternalStoresFixture()
	ctx := context.Background()
	f.users.seed(1, 2)

	_, err := f.graph.Follow(ctx, 1, 2)
	require.NoError(t, err)
	f.content.add(1, time.Now())

	require.NoError(t, f.svc.Delete(ctx, 1))

	assert.Equal(t, 0, f.store.edgeCount())
	count, err := f.content.CountByAuthors(ctx, []uint{1})
	require.NoError(t, err)
	assert.Zero(t, count)
	exists, err := f.svc.UserExists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, exists)
}
