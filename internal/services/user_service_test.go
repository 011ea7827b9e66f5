package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"taskdeck/internal/models"
)

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.Email]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.Email] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeEmailService struct {
	welcomes    []string
	resetTokens []string
	sendErr     error
}

func (f *fakeEmailService) SendWelcomeEmail(to, _ string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.welcomes = append(f.welcomes, to)
	return nil
}

func (f *fakeEmailService) SendPasswordResetEmail(_, token string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.resetTokens = append(f.resetTokens, token)
	return nil
}

func newUserServiceUnderTest() (UserService, *fakeUserRepo, *fakeEmailService) {
	repo := newFakeUserRepo()
	email := &fakeEmailService{}
	auth := NewAuthService([]byte("test-secret"), time.Hour)
	return NewUserService(repo, email, auth), repo, email
}

func TestRegisterHashesPasswordAndSendsWelcome(t *testing.T) {
	svc, repo, email := newUserServiceUnderTest()

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if user.ID == 0 {
		t.Fatal("user id not assigned")
	}
	stored := repo.users["alice@example.com"]
	if stored.PasswordHash == "hunter2" || stored.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if len(email.welcomes) != 1 || email.welcomes[0] != "alice@example.com" {
		t.Fatalf("welcomes = %v", email.welcomes)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newUserServiceUnderTest()
	ctx := context.Background()

	for name, in := range map[string][3]string{
		"blank username": {"  ", "a@b.c", "pw"},
		"blank email":    {"alice", "", "pw"},
		"blank password": {"alice", "a@b.c", "   "},
	} {
		if _, err := svc.Register(ctx, in[0], in[1], in[2]); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", name, err)
		}
	}
}

func TestRegisterSurvivesEmailFailure(t *testing.T) {
	svc, _, email := newUserServiceUnderTest()
	email.sendErr = errors.New("smtp: connection refused")

	if _, err := svc.Register(context.Background(), "bob", "bob@example.com", "pw"); err != nil {
		t.Fatalf("registration must not fail on a welcome email error: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newUserServiceUnderTest()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatal(err)
	}

	user, err := svc.Authenticate(ctx, "alice@example.com", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if user.Username != "alice" {
		t.Fatalf("authenticated user = %+v", user)
	}

	// Wrong password and unknown email fail identically.
	if _, err := svc.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("wrong password err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "hunter2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown email err = %v, want ErrNotFound", err)
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	auth := NewAuthService([]byte("test-secret"), time.Hour)

	token, err := auth.IssueToken(42)
	if err != nil {
		t.Fatal(err)
	}
	id, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Fatalf("user id = %d, want 42", id)
	}

	expired := NewAuthService([]byte("test-secret"), -time.Hour)
	token, err = expired.IssueToken(42)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.VerifyToken(token); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

type fakeResetRepo struct {
	tokens map[string]*models.PasswordReset
	nextID int64
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]*models.PasswordReset), nextID: 1}
}

func (f *fakeResetRepo) Create(_ context.Context, userID int64, token string, expiresAt time.Time) (*models.PasswordReset, error) {
	pr := &models.PasswordReset{ID: f.nextID, UserID: userID, Token: token, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	f.nextID++
	f.tokens[token] = pr
	return pr, nil
}

func (f *fakeResetRepo) UseByToken(_ context.Context, token string) (*models.PasswordReset, error) {
	pr, ok := f.tokens[token]
	if !ok || pr.UsedAt != nil || pr.ExpiresAt.Before(time.Now()) {
		return nil, sql.ErrNoRows
	}
	now := time.Now()
	pr.UsedAt = &now
	return pr, nil
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	resets := newFakeResetRepo()
	email := &fakeEmailService{}
	auth := NewAuthService([]byte("test-secret"), time.Hour)

	users := NewUserService(repo, email, auth)
	if _, err := users.Register(ctx, "alice", "alice@example.com", "old-password"); err != nil {
		t.Fatal(err)
	}

	svc := NewPasswordResetService(repo, resets, email, auth, time.Hour)
	if err := svc.RequestReset(ctx, "alice@example.com"); err != nil {
		t.Fatal(err)
	}
	if len(email.resetTokens) != 1 {
		t.Fatalf("reset emails = %d, want 1", len(email.resetTokens))
	}
	token := email.resetTokens[0]

	if err := svc.ResetPassword(ctx, token, "new-password"); err != nil {
		t.Fatal(err)
	}
	if !auth.CheckPassword(repo.users["alice@example.com"].PasswordHash, "new-password") {
		t.Fatal("stored hash does not match the new password")
	}

	// Token is single use.
	if err := svc.ResetPassword(ctx, token, "again"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("spent token err = %v, want ErrInvalidInput", err)
	}
}

func TestRequestResetQuietOnUnknownEmail(t *testing.T) {
	repo := newFakeUserRepo()
	resets := newFakeResetRepo()
	email := &fakeEmailService{}
	auth := NewAuthService([]byte("test-secret"), time.Hour)
	svc := NewPasswordResetService(repo, resets, email, auth, time.Hour)

	if err := svc.RequestReset(context.Background(), "whoami@example.com"); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if len(email.resetTokens) != 0 {
		t.Fatal("no email must be sent for an unknown account")
	}
}
