package handlers

// In-memory fakes for the repository interfaces. They mirror the store
// contract the Mongo implementations rely on: set semantics for likes,
// views and follow edges, and newest-first sorts on creation time.

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shariar-hasan/instaflow/backend/internal/models"
	"github.com/shariar-hasan/instaflow/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fakeClockBase = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeClock hands out strictly increasing timestamps so creation-time
// sorts are deterministic
type fakeClock struct {
	mu  sync.Mutex
	seq int
}

func (c *fakeClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return fakeClockBase.Add(time.Duration(c.seq) * time.Second)
}

func addToSet(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range set {
		if existing == id {
			return set
		}
	}
	return append(set, id)
}

func pull(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := set[:0]
	for _, existing := range set {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// --- users ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	for _, u := range r.users {
		if u.FirebaseUID == uid {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetSummaries(_ context.Context, ids []primitive.ObjectID) ([]models.UserSummary, error) {
	summaries := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			summaries = append(summaries, u.ToSummary())
		}
	}
	return summaries, nil
}

func (r *fakeUserRepo) SearchUsers(_ context.Context, query string) ([]models.UserSummary, error) {
	q := strings.ToLower(query)
	out := make([]models.UserSummary, 0)
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Username), q) {
			out = append(out, u.ToSummary())
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.ID != user.ID && u.Username == user.Username {
			return repositories.ErrUsernameTaken
		}
	}
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) AddFollowEdge(_ context.Context, followerID, targetID primitive.ObjectID) error {
	follower, ok := r.users[followerID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	follower.Following = addToSet(follower.Following, targetID)

	target, ok := r.users[targetID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	target.Followers = addToSet(target.Followers, followerID)
	return nil
}

func (r *fakeUserRepo) RemoveFollowEdge(_ context.Context, followerID, targetID primitive.ObjectID) error {
	follower, ok := r.users[followerID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	follower.Following = pull(follower.Following, targetID)

	target, ok := r.users[targetID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	target.Followers = pull(target.Followers, followerID)
	return nil
}

// --- posts ---

type fakePostRepo struct {
	clock *fakeClock
	posts map[primitive.ObjectID]*models.Post
	order []primitive.ObjectID
}

func newFakePostRepo(clock *fakeClock) *fakePostRepo {
	return &fakePostRepo{
		clock: clock,
		posts: make(map[primitive.ObjectID]*models.Post),
	}
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = r.clock.next()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	r.posts[post.ID] = post
	r.order = append(r.order, post.ID)
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	if p, ok := r.posts[id]; ok {
		return p, nil
	}
	return nil, repositories.ErrPostNotFound
}

func (r *fakePostRepo) newestFirst(match func(*models.Post) bool) []models.Post {
	out := make([]models.Post, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		if p, ok := r.posts[r.order[i]]; ok && match(p) {
			out = append(out, *p)
		}
	}
	return out
}

func (r *fakePostRepo) GetPostsByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return r.newestFirst(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (r *fakePostRepo) GetFeedPosts(_ context.Context, ownerIDs []primitive.ObjectID) ([]models.Post, error) {
	owners := make(map[primitive.ObjectID]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}
	return r.newestFirst(func(p *models.Post) bool {
		_, ok := owners[p.UserID]
		return ok
	}), nil
}

func (r *fakePostRepo) AddLike(_ context.Context, postID, userID primitive.ObjectID) error {
	p, ok := r.posts[postID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	p.Likes = addToSet(p.Likes, userID)
	return nil
}

func (r *fakePostRepo) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) error {
	p, ok := r.posts[postID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	p.Likes = pull(p.Likes, userID)
	return nil
}

func (r *fakePostRepo) AddComment(_ context.Context, postID primitive.ObjectID, comment *models.Comment) error {
	p, ok := r.posts[postID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = r.clock.next()
	p.Comments = append(p.Comments, *comment)
	return nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

// --- stories ---

type fakeStoryRepo struct {
	clock   *fakeClock
	now     func() time.Time
	stories map[primitive.ObjectID]*models.Story
	order   []primitive.ObjectID
}

func newFakeStoryRepo(clock *fakeClock) *fakeStoryRepo {
	return &fakeStoryRepo{
		clock:   clock,
		now:     time.Now,
		stories: make(map[primitive.ObjectID]*models.Story),
	}
}

func (r *fakeStoryRepo) put(story *models.Story) {
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	if story.Views == nil {
		story.Views = []primitive.ObjectID{}
	}
	r.stories[story.ID] = story
	r.order = append(r.order, story.ID)
}

func (r *fakeStoryRepo) CreateStory(_ context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.CreatedAt = r.clock.next()
	story.ExpiresAt = story.CreatedAt.Add(models.StoryTTL)
	if story.Views == nil {
		story.Views = []primitive.ObjectID{}
	}
	r.stories[story.ID] = story
	r.order = append(r.order, story.ID)
	return nil
}

func (r *fakeStoryRepo) GetStoryByID(_ context.Context, id primitive.ObjectID) (*models.Story, error) {
	if s, ok := r.stories[id]; ok {
		return s, nil
	}
	return nil, repositories.ErrStoryNotFound
}

func (r *fakeStoryRepo) GetStoriesByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Story, error) {
	out := make([]models.Story, 0)
	for _, id := range r.order {
		if s, ok := r.stories[id]; ok && s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeStoryRepo) GetActiveStoriesByUserIDs(_ context.Context, userIDs []primitive.ObjectID) ([]models.Story, error) {
	owners := make(map[primitive.ObjectID]struct{}, len(userIDs))
	for _, id := range userIDs {
		owners[id] = struct{}{}
	}
	now := r.now()
	out := make([]models.Story, 0)
	for _, id := range r.order {
		s, ok := r.stories[id]
		if !ok {
			continue
		}
		if _, owned := owners[s.UserID]; !owned {
			continue
		}
		if s.IsExpired(now) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeStoryRepo) AddView(_ context.Context, storyID, viewerID primitive.ObjectID) (bool, error) {
	s, ok := r.stories[storyID]
	if !ok {
		return false, repositories.ErrStoryNotFound
	}
	before := len(s.Views)
	s.Views = addToSet(s.Views, viewerID)
	return len(s.Views) > before, nil
}

func (r *fakeStoryRepo) DeleteStory(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.stories[id]; !ok {
		return repositories.ErrStoryNotFound
	}
	delete(r.stories, id)
	return nil
}

func (r *fakeStoryRepo) DeleteExpiredStories(_ context.Context) error {
	now := r.now()
	for id, s := range r.stories {
		if s.IsExpired(now) {
			delete(r.stories, id)
		}
	}
	return nil
}

// --- messages ---

type fakeMessageRepo struct {
	clock    *fakeClock
	users    *fakeUserRepo
	messages []*models.Message
}

func newFakeMessageRepo(clock *fakeClock, users *fakeUserRepo) *fakeMessageRepo {
	return &fakeMessageRepo{clock: clock, users: users}
}

func (r *fakeMessageRepo) CreateMessage(_ context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = r.clock.next()
	message.IsRead = false
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) GetMessageByID(_ context.Context, id primitive.ObjectID) (*models.Message, error) {
	for _, m := range r.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repositories.ErrMessageNotFound
}

func (r *fakeMessageRepo) newestFirst(match func(*models.Message) bool) []*models.Message {
	out := make([]*models.Message, 0)
	for i := len(r.messages) - 1; i >= 0; i-- {
		if match(r.messages[i]) {
			out = append(out, r.messages[i])
		}
	}
	return out
}

func (r *fakeMessageRepo) GetConversations(_ context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	conversations := make([]models.Conversation, 0)
	index := make(map[primitive.ObjectID]int)

	for _, m := range r.newestFirst(func(m *models.Message) bool {
		return m.SenderID == userID || m.Receiver == userID
	}) {
		other := m.SenderID
		if m.SenderID == userID {
			other = m.Receiver
		}
		idx, seen := index[other]
		if !seen {
			idx = len(conversations)
			index[other] = idx
			conv := models.Conversation{UserID: other, LastMessage: *m}
			if u, ok := r.users.users[other]; ok {
				conv.User = u.ToSummary()
			}
			conversations = append(conversations, conv)
		}
		if m.Receiver == userID && !m.IsRead {
			conversations[idx].UnreadCount++
		}
	}
	return conversations, nil
}

func (r *fakeMessageRepo) GetMessagesBetween(_ context.Context, userID, otherID primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	all := r.newestFirst(func(m *models.Message) bool {
		return (m.SenderID == userID && m.Receiver == otherID) ||
			(m.SenderID == otherID && m.Receiver == userID)
	})

	out := make([]models.Message, 0)
	for i := skip; i < int64(len(all)) && int64(len(out)) < limit; i++ {
		out = append(out, *all[i])
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, senderID, receiverID primitive.ObjectID) error {
	for _, m := range r.messages {
		if m.SenderID == senderID && m.Receiver == receiverID && !m.IsRead {
			m.IsRead = true
		}
	}
	return nil
}

func (r *fakeMessageRepo) DeleteMessage(_ context.Context, id primitive.ObjectID) error {
	for i, m := range r.messages {
		if m.ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return repositories.ErrMessageNotFound
}

// --- notifications ---

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*models.Notification
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, n)
	return nil
}

func (r *fakeNotificationRepo) all() []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Notification{}, r.created...)
}
