package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/spec-kit/feedback-board/internal/domain"
	"github.com/spec-kit/feedback-board/internal/events"
	"github.com/spec-kit/feedback-board/internal/query"
	"github.com/spec-kit/feedback-board/internal/repository"
	"github.com/spec-kit/feedback-board/internal/storage"
	apperrors "github.com/spec-kit/feedback-board/pkg/util"
)

// --- fakes ---

type fakeFeedbackRepo struct {
	items      map[primitive.ObjectID]*domain.Feedback
	upvoteErr  error
	deletedIDs []primitive.ObjectID
	afterGet   func() // runs after a GetByID snapshot is taken
}

func newFakeFeedbackRepo(items ...*domain.Feedback) *fakeFeedbackRepo {
	repo := &fakeFeedbackRepo{items: map[primitive.ObjectID]*domain.Feedback{}}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (f *fakeFeedbackRepo) Create(_ context.Context, feedback *domain.Feedback) error {
	if feedback.ID.IsZero() {
		feedback.ID = primitive.NewObjectID()
	}
	feedback.CreatedAt = time.Now()
	f.items[feedback.ID] = feedback
	return nil
}

// Update mirrors the Mongo repository contract: content fields only,
// upvote state untouched.
func (f *fakeFeedbackRepo) Update(_ context.Context, feedback *domain.Feedback) error {
	stored, ok := f.items[feedback.ID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	stored.Title = feedback.Title
	stored.Description = feedback.Description
	stored.Category = feedback.Category
	stored.Status = feedback.Status
	stored.Image = feedback.Image
	return nil
}

func (f *fakeFeedbackRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.items, id)
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeFeedbackRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Feedback, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *item
	copied.UpvotedBy = append([]primitive.ObjectID{}, item.UpvotedBy...)
	if f.afterGet != nil {
		f.afterGet()
	}
	return &copied, nil
}

func (f *fakeFeedbackRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Feedback, error) {
	var out []domain.Feedback
	for _, item := range f.items {
		if item.User == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeFeedbackRepo) ListWithListing(_ context.Context, _ *query.Listing) ([]domain.Feedback, int64, error) {
	var out []domain.Feedback
	for _, item := range f.items {
		out = append(out, *item)
	}
	return out, int64(len(out)), nil
}

func (f *fakeFeedbackRepo) AddUpvote(_ context.Context, id, userID primitive.ObjectID) error {
	if f.upvoteErr != nil {
		return f.upvoteErr
	}
	item, ok := f.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if item.HasUpvoted(userID) {
		return repository.ErrAlreadyUpvoted
	}
	item.UpvotedBy = append(item.UpvotedBy, userID)
	item.Upvotes++
	return nil
}

type fakeCategoryRepo struct {
	categories map[primitive.ObjectID]domain.Category
}

func newFakeCategoryRepo(categories ...domain.Category) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: map[primitive.ObjectID]domain.Category{}}
	for _, c := range categories {
		repo.categories[c.ID] = c
	}
	return repo
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	f.categories[category.ID] = *category
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	f.categories[category.ID] = *category
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &category, nil
}

func (f *fakeCategoryRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Category, error) {
	var out []domain.Category
	for _, id := range ids {
		if category, ok := f.categories[id]; ok {
			out = append(out, category)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, category := range f.categories {
		out = append(out, category)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[primitive.ObjectID]domain.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.users {
		out = append(out, user)
	}
	return out, nil
}

type fakeCommentRepo struct {
	comments map[primitive.ObjectID]domain.Comment
}

func newFakeCommentRepo(comments ...domain.Comment) *fakeCommentRepo {
	repo := &fakeCommentRepo{comments: map[primitive.ObjectID]domain.Comment{}}
	for _, c := range comments {
		repo.comments[c.ID] = c
	}
	return repo
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	comment.CreatedAt = time.Now()
	f.comments[comment.ID] = *comment
	return nil
}

func (f *fakeCommentRepo) Update(_ context.Context, comment *domain.Comment) error {
	f.comments[comment.ID] = *comment
	return nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &comment, nil
}

func (f *fakeCommentRepo) ListByFeedback(_ context.Context, feedbackID primitive.ObjectID) ([]domain.Comment, error) {
	return f.ListByFeedbackIDs(context.Background(), []primitive.ObjectID{feedbackID})
}

func (f *fakeCommentRepo) ListByFeedbackIDs(_ context.Context, feedbackIDs []primitive.ObjectID) ([]domain.Comment, error) {
	wanted := make(map[primitive.ObjectID]struct{}, len(feedbackIDs))
	for _, id := range feedbackIDs {
		wanted[id] = struct{}{}
	}
	var out []domain.Comment
	for _, comment := range f.comments {
		if _, ok := wanted[comment.Feedback]; ok {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) List(_ context.Context) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, comment := range f.comments {
		out = append(out, comment)
	}
	return out, nil
}

type fakeImageStore struct {
	deleted   []string
	deleteErr error
}

func (f *fakeImageStore) Upload(_ context.Context, _ io.Reader, publicID string) (*storage.Image, error) {
	return &storage.Image{PublicID: publicID, URL: "https://images.test/" + publicID}, nil
}

func (f *fakeImageStore) Delete(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return f.deleteErr
}

type captureDispatcher struct {
	events []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

// --- fixtures ---

func testUser(role domain.UserRole) *domain.User {
	return &domain.User{ID: primitive.NewObjectID(), Name: "Sam", Email: "sam@example.com", Role: role}
}

func testCategory() domain.Category {
	return domain.Category{ID: primitive.NewObjectID(), Name: "feature"}
}

func testFeedback(owner *domain.User, category domain.Category) *domain.Feedback {
	return &domain.Feedback{
		ID:          primitive.NewObjectID(),
		Title:       "Dark mode",
		Description: "Please add a dark theme",
		Category:    category.ID,
		Status:      domain.StatusOpen,
		UpvotedBy:   []primitive.ObjectID{},
		User:        owner.ID,
		CreatedAt:   time.Now(),
	}
}

type feedbackFixture struct {
	service    *FeedbackService
	feedback   *fakeFeedbackRepo
	comments   *fakeCommentRepo
	images     *fakeImageStore
	dispatcher *captureDispatcher
}

func newFeedbackFixture(users *fakeUserRepo, categories *fakeCategoryRepo, items ...*domain.Feedback) *feedbackFixture {
	feedbackRepo := newFakeFeedbackRepo(items...)
	commentRepo := newFakeCommentRepo()
	images := &fakeImageStore{}
	dispatcher := &captureDispatcher{}
	service := NewFeedbackService(FeedbackDependencies{
		FeedbackRepo: feedbackRepo,
		CommentRepo:  commentRepo,
		CategoryRepo: categories,
		UserRepo:     users,
		Images:       images,
		Dispatcher:   dispatcher,
		Logger:       zap.NewNop(),
	})
	return &feedbackFixture{
		service:    service,
		feedback:   feedbackRepo,
		comments:   commentRepo,
		images:     images,
		dispatcher: dispatcher,
	}
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, status, domainErr.HTTPStatus, domainErr.Message)
}

// --- tests ---

func TestFeedbackCreate(t *testing.T) {
	owner := testUser(domain.RoleMember)
	category := testCategory()
	fx := newFeedbackFixture(newFakeUserRepo(*owner), newFakeCategoryRepo(category))

	feedback, err := fx.service.Create(context.Background(), owner, FeedbackCreateInput{
		Title:       "  Dark mode  ",
		Description: "Please add a dark theme",
		CategoryID:  category.ID.Hex(),
	})
	require.NoError(t, err)

	assert.Equal(t, "Dark mode", feedback.Title)
	assert.Equal(t, domain.StatusOpen, feedback.Status)
	assert.Equal(t, owner.ID, feedback.User)
	assert.NotNil(t, feedback.UpvotedBy)
	assert.Zero(t, feedback.Upvotes)

	require.Len(t, fx.dispatcher.events, 1)
	assert.Equal(t, events.EventFeedbackCreated, fx.dispatcher.events[0].Type)
}

func TestFeedbackCreateRejectsUnknownCategory(t *testing.T) {
	owner := testUser(domain.RoleMember)
	fx := newFeedbackFixture(newFakeUserRepo(*owner), newFakeCategoryRepo())

	_, err := fx.service.Create(context.Background(), owner, FeedbackCreateInput{
		Title:       "Dark mode",
		Description: "Please add a dark theme",
		CategoryID:  primitive.NewObjectID().Hex(),
	})
	assertHTTPStatus(t, err, 400)

	_, err = fx.service.Create(context.Background(), owner, FeedbackCreateInput{
		Title:       "Dark mode",
		Description: "Please add a dark theme",
		CategoryID:  "not-hex",
	})
	assertHTTPStatus(t, err, 400)
}

func TestFeedbackGetNotFound(t *testing.T) {
	owner := testUser(domain.RoleMember)
	fx := newFeedbackFixture(newFakeUserRepo(*owner), newFakeCategoryRepo())

	_, err := fx.service.Get(context.Background(), primitive.NewObjectID().Hex())
	assertHTTPStatus(t, err, 404)

	// Malformed ids are indistinguishable from missing documents.
	_, err = fx.service.Get(context.Background(), "not-a-hex-id")
	assertHTTPStatus(t, err, 404)
}

func TestFeedbackUpdateOwnership(t *testing.T) {
	owner := testUser(domain.RoleMember)
	stranger := testUser(domain.RoleMember)
	admin := testUser(domain.RoleAdmin)
	category := testCategory()
	item := testFeedback(owner, category)
	fx := newFeedbackFixture(newFakeUserRepo(*owner, *stranger, *admin), newFakeCategoryRepo(category), item)

	newTitle := "Light mode"

	// A stranger gets a 403, not a 404: the item exists.
	_, err := fx.service.Update(context.Background(), stranger, item.ID.Hex(), FeedbackUpdateInput{Title: &newTitle})
	assertHTTPStatus(t, err, 403)

	updated, err := fx.service.Update(context.Background(), owner, item.ID.Hex(), FeedbackUpdateInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Light mode", updated.Title)

	status := domain.StatusResolved
	updated, err = fx.service.Update(context.Background(), admin, item.ID.Hex(), FeedbackUpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, updated.Status)
}

func TestFeedbackUpdateEmitsStatusChange(t *testing.T) {
	owner := testUser(domain.RoleMember)
	category := testCategory()
	item := testFeedback(owner, category)
	fx := newFeedbackFixture(newFakeUserRepo(*owner), newFakeCategoryRepo(category), item)

	status := domain.StatusInProgress
	_, err := fx.service.Update(context.Background(), owner, item.ID.Hex(), FeedbackUpdateInput{Status: &status})
	require.NoError(t, err)

	require.Len(t, fx.dispatcher.events, 1)
	assert.Equal(t, events.EventFeedbackStatusChanged, fx.dispatcher.events[0].Type)

	// Updating without a status change stays quiet.
	title := "Renamed"
	_, err = fx.service.Update(context.Background(), owner, item.ID.Hex(), FeedbackUpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Len(t, fx.dispatcher.events, 1)
}

func TestFeedbackDeleteCleansUpImageBestEffort(t *testing.T) {
	owner := testUser(domain.RoleMember)
	category := testCategory()
	item := testFeedback(owner, category)
	item.Image = &domain.Image{PublicID: "feedback/abc", URL: "https://images.test/abc"}
	fx := newFeedbackFixture(newFakeUserRepo(*owner), newFakeCategoryRepo(category), item)
	fx.images.deleteErr = errors.New("cloud down")

	// A failing image store never blocks the delete.
	err := fx.service.Delete(context.Background(), owner, item.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{"feedback/abc"}, fx.images.deleted)
	assert.Equal(t, []primitive.ObjectID{item.ID}, fx.feedback.deletedIDs)
}

func TestFeedbackDeleteForbiddenForStrangers(t *testing.T) {
	owner := testUser(domain.RoleMember)
	stranger := testUser(domain.RoleMember)
	category := testCategory()
	item := testFeedback(owner, category)
	fx := newFeedbackFixture(newFakeUserRepo(*owner, *stranger), newFakeCategoryRepo(category), item)

	err := fx.service.Delete(context.Background(), stranger, item.ID.Hex())
	assertHTTPStatus(t, err, 403)
	assert.Empty(t, fx.feedback.deletedIDs)
}

func TestFeedbackUpvoteOncePerUser(t *testing.T) {
	owner := testUser(domain.RoleMember)
	voter := testUser(domain.RoleMember)
	category := testCategory()
	item := testFeedback(owner, category)
	fx := newFeedbackFixture(newFakeUserRepo(*owner, *voter), newFakeCategoryRepo(category), item)

	updated, err := fx.service.Upvote(context.Background(), voter, item.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Upvotes)
	assert.True(t, updated.HasUpvoted(voter.ID))

	_, err = fx.service.Upvote(context.Background(), voter, item.ID.Hex())
	assertHTTPStatus(t, err, 400)

	got, err := fx.service.Get(context.Background(), item.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Upvotes)
}

func TestFeedbackUpdateKeepsConcurrentUpvotes(t *testing.T) {
	owner := testUser(domain.RoleMember)
	voter := testUser(domain.RoleMember)
	category := testCategory()
	item := testFeedback(owner, category)
	fx := newFeedbackFixture(newFakeUserRepo(*owner, *voter), newFakeCategoryRepo(category), item)

	// A vote lands between the owner's fetch and the content write.
	fx.feedback.afterGet = func() {
		fx.feedback.afterGet = nil
		require.NoError(t, fx.feedback.AddUpvote(context.Background(), item.ID, voter.ID))
	}

	newTitle := "Light mode"
	_, err := fx.service.Update(context.Background(), owner, item.ID.Hex(), FeedbackUpdateInput{Title: &newTitle})
	require.NoError(t, err)

	stored, err := fx.feedback.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Light mode", stored.Title)
	assert.Equal(t, 1, stored.Upvotes)
	assert.True(t, stored.HasUpvoted(voter.ID))
}

func TestFeedbackUpvoteDeletedConcurrently(t *testing.T) {
	owner := testUser(domain.RoleMember)
	voter := testUser(domain.RoleMember)
	category := testCategory()
	item := testFeedback(owner, category)
	fx := newFeedbackFixture(newFakeUserRepo(*owner, *voter), newFakeCategoryRepo(category), item)

	// The item vanishes between the existence check and the vote; that
	// is a 404, not an "already upvoted" rejection.
	fx.feedback.afterGet = func() {
		fx.feedback.afterGet = nil
		delete(fx.feedback.items, item.ID)
	}

	_, err := fx.service.Upvote(context.Background(), voter, item.ID.Hex())
	assertHTTPStatus(t, err, 404)
}

func TestFeedbackListResolvesReferences(t *testing.T) {
	owner := testUser(domain.RoleMember)
	category := testCategory()
	item := testFeedback(owner, category)
	fx := newFeedbackFixture(newFakeUserRepo(*owner), newFakeCategoryRepo(category), item)
	commentID := primitive.NewObjectID()
	fx.comments.comments[commentID] = domain.Comment{
		ID:       commentID,
		Text:     "agreed",
		User:     owner.ID,
		Feedback: item.ID,
	}

	listing := &query.Listing{Page: 1, Limit: 25}
	result, err := fx.service.List(context.Background(), listing)
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Items, 1)
	view := result.Items[0]
	require.NotNil(t, view.User)
	assert.Equal(t, owner.Name, view.User.Name)
	require.NotNil(t, view.Category)
	assert.Equal(t, category.Name, view.Category.Name)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "agreed", view.Comments[0].Text)
}
