package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/collegeprep/organizer/internal/app/models"
	"github.com/collegeprep/organizer/internal/app/tasktemplates"
	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/collegeprep/organizer/internal/pkg/auth"
	"github.com/collegeprep/organizer/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// anchor is the fixed clock used across service tests
var anchor = time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return anchor }

// ---- users ----

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(user)
}

func (f *fakeUserStore) insertLocked(user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = anchor
	user.UpdatedAt = anchor
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserStore) UpdateRole(_ context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	r := role
	u.Role = &r
	cp := *u
	return &cp, nil
}

// ---- refresh tokens ----

type fakeToken struct {
	userID  uuid.UUID
	expiry  time.Time
	revoked bool
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*fakeToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*fakeToken)}
}

func (f *fakeTokenStore) CreateToken(_ context.Context, token string, userID uuid.UUID, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &fakeToken{userID: userID, expiry: expiry}
	return nil
}

func (f *fakeTokenStore) GetTokenByValue(_ context.Context, token string) (uuid.UUID, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	switch {
	case !ok:
		return uuid.Nil, time.Time{}, apperrors.ErrTokenNotFound
	case t.revoked:
		return uuid.Nil, time.Time{}, apperrors.ErrTokenRevoked
	}
	return t.userID, t.expiry, nil
}

func (f *fakeTokenStore) RevokeToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[token]; ok {
		t.revoked = true
	}
	return nil
}

func (f *fakeTokenStore) RevokeAllUserTokens(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func (f *fakeTokenStore) active(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tokens {
		if t.userID == userID && !t.revoked {
			n++
		}
	}
	return n
}

// ---- categories ----

type fakeCategoryStore struct {
	categories []*models.Category
	mapErr     error
}

func newFakeCategoryStore() *fakeCategoryStore {
	names := []string{
		tasktemplates.CategoryApplications,
		tasktemplates.CategoryFinancialAid,
		tasktemplates.CategoryHousing,
		tasktemplates.CategoryTesting,
		tasktemplates.CategoryHealth,
		tasktemplates.CategoryMoveIn,
	}
	f := &fakeCategoryStore{}
	for i, n := range names {
		f.categories = append(f.categories, &models.Category{
			ID: uuid.New(), Name: n, Color: models.ColorChart1, Icon: models.IconFileText, SortOrder: i + 1,
		})
	}
	return f
}

func (f *fakeCategoryStore) List(context.Context) ([]*models.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategoryStore) NameToIDMap(context.Context) (map[string]uuid.UUID, error) {
	if f.mapErr != nil {
		return nil, f.mapErr
	}
	m := make(map[string]uuid.UUID, len(f.categories))
	for _, c := range f.categories {
		m[c.Name] = c.ID
	}
	return m, nil
}

// ---- tasks ----

type fakeTaskStore struct {
	mu      sync.Mutex
	tasks   []*models.Task
	seeded  map[uuid.UUID]bool
	seedErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{seeded: make(map[uuid.UUID]bool)}
}

func (f *fakeTaskStore) List(_ context.Context, userID uuid.UUID) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Task{}
	for _, t := range f.tasks {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id && t.UserID == userID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperrors.ErrTaskNotFound
}

func (f *fakeTaskStore) Create(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.CreatedAt = anchor
	task.UpdatedAt = anchor
	cp := *task
	f.tasks = append(f.tasks, &cp)
	return nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == task.ID && t.UserID == task.UserID {
			cp := *task
			f.tasks[i] = &cp
			return nil
		}
	}
	return apperrors.ErrTaskNotFound
}

func (f *fakeTaskStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id && t.UserID == userID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrTaskNotFound
}

func (f *fakeTaskStore) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tasks {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeTaskStore) Stats(_ context.Context, userID uuid.UUID, now time.Time) (*models.TaskStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s models.TaskStats
	for _, t := range f.tasks {
		if t.UserID != userID {
			continue
		}
		s.TotalTasks++
		switch {
		case t.Status == models.TaskCompleted:
			s.CompletedTasks++
		case t.DueDate == nil:
		case t.DueDate.Before(now):
			s.OverdueTasks++
		default:
			s.UpcomingTasks++
		}
	}
	return &s, nil
}

func (f *fakeTaskStore) SeedForUser(_ context.Context, userID uuid.UUID, drafts []models.Task) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seedErr != nil {
		return false, f.seedErr
	}
	if f.seeded[userID] {
		return false, nil
	}
	f.seeded[userID] = true
	for i := range drafts {
		d := drafts[i]
		d.CreatedAt = anchor
		f.tasks = append(f.tasks, &d)
	}
	return true, nil
}

// ---- documents ----

type fakeDocumentStore struct {
	docs map[uuid.UUID]*models.Document
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: make(map[uuid.UUID]*models.Document)}
}

func (f *fakeDocumentStore) List(_ context.Context, userID uuid.UUID) ([]*models.Document, error) {
	out := []*models.Document{}
	for _, d := range f.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocumentStore) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Document, error) {
	d, ok := f.docs[id]
	if !ok || d.UserID != userID {
		return nil, apperrors.ErrDocumentNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocumentStore) Create(_ context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Status == "" {
		doc.Status = models.DocumentPending
	}
	cp := *doc
	f.docs[doc.ID] = &cp
	return nil
}

func (f *fakeDocumentStore) Update(_ context.Context, doc *models.Document) error {
	d, ok := f.docs[doc.ID]
	if !ok || d.UserID != doc.UserID {
		return apperrors.ErrDocumentNotFound
	}
	cp := *doc
	f.docs[doc.ID] = &cp
	return nil
}

func (f *fakeDocumentStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	d, ok := f.docs[id]
	if !ok || d.UserID != userID {
		return apperrors.ErrDocumentNotFound
	}
	delete(f.docs, id)
	return nil
}

// ---- subscriptions and payments ----

type fakeBilling struct {
	mu       sync.Mutex
	subs     map[uuid.UUID]*models.Subscription
	payments map[string]*models.Payment
	lookups  int
	upserts  int

	// failSuccess is returned once by the next RecordSuccess
	failSuccess error
}

func newFakeBilling() *fakeBilling {
	return &fakeBilling{
		subs:     make(map[uuid.UUID]*models.Subscription),
		payments: make(map[string]*models.Payment),
	}
}

func (f *fakeBilling) HasActive(_ context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.subs[userID].GrantsAccess(now), nil
}

func (f *fakeBilling) Record(_ context.Context, p *models.Payment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.payments[p.ProviderPaymentID]; ok {
		return false, nil
	}
	cp := *p
	f.payments[p.ProviderPaymentID] = &cp
	return true, nil
}

func (f *fakeBilling) RecordSuccess(ctx context.Context, p *models.Payment, sub *models.Subscription) (bool, error) {
	if f.failSuccess != nil {
		err := f.failSuccess
		f.failSuccess = nil
		return false, err
	}
	created, err := f.Record(ctx, p)
	if err != nil || !created {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if prev, ok := f.subs[sub.UserID]; ok && prev.CurrentPeriodEnd == nil && prev.Status == models.SubscriptionActive {
		return true, nil
	}
	cp := *sub
	f.subs[sub.UserID] = &cp
	return true, nil
}

// ---- invitations ----

type fakeInvitationStore struct {
	mu          sync.Mutex
	invitations map[string]*models.StudentInvitation
	users       *fakeUserStore
	relations   map[uuid.UUID][]uuid.UUID
}

func newFakeInvitationStore(users *fakeUserStore) *fakeInvitationStore {
	return &fakeInvitationStore{
		invitations: make(map[string]*models.StudentInvitation),
		users:       users,
		relations:   make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeInvitationStore) Create(_ context.Context, inv *models.StudentInvitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.invitations {
		if other.ParentID == inv.ParentID && other.StudentEmail == inv.StudentEmail &&
			other.EffectiveStatus(inv.CreatedAt) == models.InvitationPending {
			return apperrors.ErrDuplicateInvitation
		}
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.Status = models.InvitationPending
	cp := *inv
	f.invitations[inv.Token] = &cp
	return nil
}

func (f *fakeInvitationStore) GetByToken(_ context.Context, token string) (*models.StudentInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[token]
	if !ok {
		return nil, apperrors.ErrInvitationNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvitationStore) HasPendingFor(_ context.Context, parentID uuid.UUID, email string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invitations {
		if inv.ParentID == parentID && inv.StudentEmail == strings.ToLower(email) &&
			inv.EffectiveStatus(now) == models.InvitationPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitationStore) AcceptAndCreateStudent(_ context.Context, token string, student *models.User, now time.Time) (*models.StudentInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[token]
	if !ok || inv.EffectiveStatus(now) != models.InvitationPending {
		return nil, apperrors.ErrInvitationUsed
	}

	f.users.mu.Lock()
	err := f.users.insertLocked(student)
	f.users.mu.Unlock()
	if err != nil {
		return nil, apperrors.ErrUserExists
	}

	inv.Status = models.InvitationAccepted
	accepted := now
	inv.AcceptedAt = &accepted
	f.relations[inv.ParentID] = append(f.relations[inv.ParentID], student.ID)
	cp := *inv
	return &cp, nil
}

func (f *fakeInvitationStore) ListStudents(ctx context.Context, parentID uuid.UUID) ([]*models.User, error) {
	f.mu.Lock()
	ids := append([]uuid.UUID(nil), f.relations[parentID]...)
	f.mu.Unlock()

	out := []*models.User{}
	for _, id := range ids {
		u, err := f.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// ---- mailer ----

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendStudentInvitation(toEmail, toName, parentName, token string, expiresAt time.Time) error {
	args := m.Called(toEmail, toName, parentName, token, expiresAt)
	return args.Error(0)
}

// ---- wiring ----

type testEnv struct {
	users       *fakeUserStore
	tokens      *fakeTokenStore
	categories  *fakeCategoryStore
	tasks       *fakeTaskStore
	documents   *fakeDocumentStore
	billing     *fakeBilling
	invitations *fakeInvitationStore
	mailer      *mockMailer

	seeder      *SeedingService
	sessions    *SessionStateStore
	auth        *AuthService
	invites     *InvitationService
	entitlement *EntitlementService
	tasksSvc    *TaskService
	docsSvc     *DocumentService
	payments    *PaymentService
	provider    *SimulatedProvider
}

func newTestEnv(sessions *SessionStateStore) *testEnv {
	lg := logger.Nop()
	e := &testEnv{
		users:      newFakeUserStore(),
		tokens:     newFakeTokenStore(),
		categories: newFakeCategoryStore(),
		tasks:      newFakeTaskStore(),
		documents:  newFakeDocumentStore(),
		billing:    newFakeBilling(),
		mailer:     &mockMailer{},
		provider:   NewSimulatedProvider(),
	}
	e.invitations = newFakeInvitationStore(e.users)
	if sessions == nil {
		sessions = NewSessionStateStore(nil, 0, lg)
	}
	e.sessions = sessions

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}

	e.seeder = NewSeedingService(e.categories, e.tasks, lg)
	e.seeder.now = fixedClock
	e.auth = NewAuthService(e.users, e.tokens, jwtService, hasher, e.seeder, e.sessions, lg)
	e.invites = NewInvitationService(e.users, e.invitations, e.invitations, hasher, e.mailer, e.auth, e.seeder, 0, lg)
	e.invites.now = fixedClock
	e.entitlement = NewEntitlementService(e.billing, nil, 0, lg)
	e.entitlement.now = fixedClock
	e.tasksSvc = NewTaskService(e.tasks, e.categories, e.seeder, lg)
	e.tasksSvc.now = fixedClock
	e.docsSvc = NewDocumentService(e.documents, e.tasks, lg)
	e.payments = NewPaymentService(e.users, e.billing, e.entitlement, e.provider, PaymentConfig{
		PriceCents:    499,
		Currency:      "usd",
		AccessPeriod:  365 * 24 * time.Hour,
		WebhookSecret: "whsec_test",
	}, lg)
	e.payments.now = fixedClock
	return e
}

// createUser stores a user with the given role directly
func (e *testEnv) createUser(email string, role *models.Role) *models.User {
	u := &models.User{Email: email, FirstName: "Pat", LastName: "Doe", Role: role}
	if err := e.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func rolePtr(r models.Role) *models.Role { return &r }
