package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
)

// The fakes below enforce the same rules the database schema does (unique
// follower/followed pair, no self edge, unique username and email) so service
// behaviour can be tested without a running store.

type pair struct{ follower, followed uint }

type fakeRelationshipStore struct {
	mu     sync.Mutex
	nextID uint
	edges  map[pair]models.Relationship
	clock  time.Time

	// afterFind runs after FindByFollowerAndFollowed, outside the lock.
	afterFind func()
	// err, when set, is returned by every call.
	err error
	// external marks the store as living outside the PostgreSQL transaction,
	// like the Neo4j store.
	external bool
}

func (s *fakeRelationshipStore) JoinsTx() bool { return !s.external }

func newFakeRelationshipStore() *fakeRelationshipStore {
	return &fakeRelationshipStore{
		edges: map[pair]models.Relationship{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *fakeRelationshipStore) Create(_ context.Context, followerID, followedID uint) (*models.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if followerID == followedID {
		return nil, apperror.Wrap("fake.create", apperror.InvalidEdge, "", nil)
	}
	key := pair{followerID, followedID}
	if _, ok := s.edges[key]; ok {
		return nil, apperror.Wrap("fake.create", apperror.DuplicateEdge, "", nil)
	}
	s.nextID++
	s.clock = s.clock.Add(time.Second)
	rel := models.Relationship{ID: s.nextID, FollowerID: followerID, FollowedID: followedID, CreatedAt: s.clock}
	s.edges[key] = rel
	return &rel, nil
}

func (s *fakeRelationshipStore) FindByFollowerAndFollowed(_ context.Context, followerID, followedID uint) (*models.Relationship, error) {
	s.mu.Lock()
	rel, ok := s.edges[pair{followerID, followedID}]
	err := s.err
	hook := s.afterFind
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Wrap("fake.find", apperror.NotFound, "", nil)
	}
	return &rel, nil
}

func (s *fakeRelationshipStore) ListFollowedBy(_ context.Context, followerID uint) ([]uint, error) {
	return s.list(func(r models.Relationship) (uint, bool) { return r.FollowedID, r.FollowerID == followerID })
}

func (s *fakeRelationshipStore) ListFollowersOf(_ context.Context, followedID uint) ([]uint, error) {
	return s.list(func(r models.Relationship) (uint, bool) { return r.FollowerID, r.FollowedID == followedID })
}

func (s *fakeRelationshipStore) list(match func(models.Relationship) (uint, bool)) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	rels := make([]models.Relationship, 0)
	for _, r := range s.edges {
		if _, ok := match(r); ok {
			rels = append(rels, r)
		}
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].ID < rels[j].ID })
	ids := make([]uint, 0, len(rels))
	for _, r := range rels {
		id, _ := match(r)
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *fakeRelationshipStore) CountFollowing(ctx context.Context, followerID uint) (int64, error) {
	ids, err := s.ListFollowedBy(ctx, followerID)
	return int64(len(ids)), err
}

func (s *fakeRelationshipStore) CountFollowers(ctx context.Context, followedID uint) (int64, error) {
	ids, err := s.ListFollowersOf(ctx, followedID)
	return int64(len(ids)), err
}

func (s *fakeRelationshipStore) Delete(_ context.Context, relationshipID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for key, r := range s.edges {
		if r.ID == relationshipID {
			delete(s.edges, key)
			return nil
		}
	}
	return apperror.Wrap("fake.delete", apperror.NotFound, "", nil)
}

func (s *fakeRelationshipStore) DeleteByUser(_ context.Context, userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var n int64
	for key := range s.edges {
		if key.follower == userID || key.followed == userID {
			delete(s.edges, key)
			n++
		}
	}
	return n, nil
}

func (s *fakeRelationshipStore) edgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}

func (s *fakeRelationshipStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := make(map[pair]models.Relationship, len(s.edges))
	for k, v := range s.edges {
		saved[k] = v
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.edges = saved
	}
}

type fakeContentStore struct {
	mu     sync.Mutex
	nextID uint
	posts  []models.Micropost

	queries int
	err     error
	// external marks the store as living outside the PostgreSQL transaction,
	// like the MongoDB repository.
	external bool
	// sawTx records whether a read arrived with a transaction in its context.
	sawTx atomic.Bool
}

func (s *fakeContentStore) JoinsTx() bool { return !s.external }

func (s *fakeContentStore) add(authorID uint, at time.Time) models.Micropost {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := models.Micropost{ID: s.nextID, AuthorID: authorID, Content: "post", CreatedAt: at}
	s.posts = append(s.posts, p)
	return p
}

func (s *fakeContentStore) Create(_ context.Context, post *models.Micropost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.nextID++
	post.ID = s.nextID
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	s.posts = append(s.posts, *post)
	return nil
}

func (s *fakeContentStore) QueryByAuthors(ctx context.Context, authorIDs []uint, offset, limit int) ([]models.Micropost, error) {
	if _, ok := repositories.TxFromContext(ctx); ok {
		s.sawTx.Store(true)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.err != nil {
		return nil, s.err
	}
	matched := s.matching(authorIDs)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	if offset >= len(matched) {
		return []models.Micropost{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (s *fakeContentStore) CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error) {
	if _, ok := repositories.TxFromContext(ctx); ok {
		s.sawTx.Store(true)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.matching(authorIDs))), nil
}

func (s *fakeContentStore) DeleteByAuthor(_ context.Context, authorID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	kept := s.posts[:0]
	var n int64
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			n++
			continue
		}
		kept = append(kept, p)
	}
	s.posts = kept
	return n, nil
}

func (s *fakeContentStore) matching(authorIDs []uint) []models.Micropost {
	in := make(map[uint]bool, len(authorIDs))
	for _, id := range authorIDs {
		in[id] = true
	}
	out := []models.Micropost{}
	for _, p := range s.posts {
		if in[p.AuthorID] {
			out = append(out, p)
		}
	}
	return out
}

func (s *fakeContentStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := append([]models.Micropost(nil), s.posts...)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.posts = saved
	}
}

type fakeUserRepository struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User

	deleteErr error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[uint]models.User{}}
}

// seed stores users with the given ids directly.
func (r *fakeUserRepository) seed(ids ...uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		name := "user" + string(rune('a'+id%26))
		r.users[id] = models.User{ID: id, Name: name, Username: name + strings.Repeat("x", int(id%5)), Email: name + "@example.com"}
		if id > r.nextID {
			r.nextID = id
		}
	}
}

func (r *fakeUserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Wrap("fake.create_user", apperror.Conflict, "", nil)
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepository) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.Wrap("fake.get_user", apperror.NotFound, "", nil)
	}
	return &u, nil
}

func (r *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.Wrap("fake.get_user_by_email", apperror.NotFound, "", nil)
}

func (r *fakeUserRepository) Exists(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepository) SearchUsers(_ context.Context, query string, offset, limit int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []models.User{}
	for _, u := range r.users {
		if strings.Contains(u.Username, query) {
			matched = append(matched, u)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Username < matched[j].Username })
	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.User{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *fakeUserRepository) DeleteUser(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.users[id]; !ok {
		return apperror.Wrap("fake.delete_user", apperror.NotFound, "", nil)
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepository) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[uint]models.User, len(r.users))
	for k, v := range r.users {
		saved[k] = v
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.users = saved
	}
}

type fakeMessageRepository struct {
	mu       sync.Mutex
	nextID   uint
	messages []models.Message
}

func (r *fakeMessageRepository) CreateMessage(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Date(2024, 1, 1, 0, 0, int(r.nextID), 0, time.UTC)
	}
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeMessageRepository) GetReceived(_ context.Context, userID uint, offset, limit int) ([]models.Message, int64, error) {
	return r.page(func(m models.Message) bool { return m.ToUserID == userID }, offset, limit)
}

func (r *fakeMessageRepository) GetSent(_ context.Context, userID uint, offset, limit int) ([]models.Message, int64, error) {
	return r.page(func(m models.Message) bool { return m.FromUserID == userID }, offset, limit)
}

func (r *fakeMessageRepository) page(match func(models.Message) bool, offset, limit int) ([]models.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []models.Message{}
	for i := len(r.messages) - 1; i >= 0; i-- {
		if match(r.messages[i]) {
			matched = append(matched, r.messages[i])
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.Message{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *fakeMessageRepository) DeleteByUser(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	var n int64
	for _, m := range r.messages {
		if m.FromUserID == userID || m.ToUserID == userID {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.messages = kept
	return n, nil
}

func (r *fakeMessageRepository) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := append([]models.Message(nil), r.messages...)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.messages = saved
	}
}

// fakeTransactor restores every participant when fn fails, like a rollback.
type fakeTransactor struct {
	participants []interface{ snapshot() func() }
	commits      int
	rollbacks    int
}

func (t *fakeTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	restores := make([]func(), 0, len(t.participants))
	for _, p := range t.participants {
		restores = append(restores, p.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		t.rollbacks++
		return err
	}
	t.commits++
	return nil
}
