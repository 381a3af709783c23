package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	coreauth "go-foodserve-api/internal/core/auth"
	"go-foodserve-api/internal/core/mail"
	"go-foodserve-api/internal/domain"
)

// ---------- 测试替身 ----------

type fakeStore struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	findErr error
}

func newFakeStore() *fakeStore { return &fakeStore{users: map[string]*domain.User{}} }

func (s *fakeStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.users {
		if e.Email == u.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindByResetToken(_ context.Context, token string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) SaveResetToken(_ context.Context, id string, token *string, expiry *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.ResetToken = token
	u.ResetTokenExpiry = expiry
	return nil
}

func (s *fakeStore) ResetPassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.PasswordHash = hash
	u.ResetToken = nil
	u.ResetTokenExpiry = nil
	return nil
}

func (s *fakeStore) List(_ context.Context, _ string, _, _ int) ([]domain.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (s *fakeStore) SetRole(_ context.Context, id string, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.Role = role
	return nil
}

func (s *fakeStore) resetStateOf(email string) (token *string, expiry *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u.ResetToken, u.ResetTokenExpiry
		}
	}
	return nil, nil
}

type sentMail struct {
	to, name, subject, body string
}

type recordSender struct {
	outcome mail.Outcome // 为空时按 sent 返回
	sent    []sentMail
}

func (s *recordSender) Send(_ context.Context, to, name, subject, body string) mail.Outcome {
	s.sent = append(s.sent, sentMail{to: to, name: name, subject: subject, body: body})
	if s.outcome == "" {
		return mail.OutcomeSent
	}
	return s.outcome
}

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeStore, *recordSender, *time.Time) {
	t.Helper()
	store := newFakeStore()
	sender := &recordSender{}
	j := &coreauth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}
	svc := NewService(store, j, sender, zap.NewNop(), "http://localhost:5000")
	clock := testBase
	svc.now = func() time.Time { return clock }
	return svc, store, sender, &clock
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var ae *Error
	require.ErrorAs(t, err, &ae)
	return ae.Kind
}

// ---------- Register / Login ----------

func TestRegisterThenLogin(t *testing.T) {
	svc, _, sender, _ := newTestService(t)
	ctx := context.Background()

	u, outcome, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, u.Role)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "pw123456", u.PasswordHash)
	assert.Equal(t, mail.OutcomeSent, outcome)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "a@x.com", sender.sent[0].to)

	res, err := svc.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, u.ID, res.UserID)
	assert.Equal(t, domain.RoleMember, res.Role)

	_, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.Equal(t, KindUnauthorized, kindOf(t, err))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, sender, _ := newTestService(t)
	ctx := context.Background()

	cases := [][3]string{
		{"", "a@x.com", "pw123456"},
		{"Alice", "", "pw123456"},
		{"Alice", "a@x.com", ""},
	}
	for _, c := range cases {
		_, _, err := svc.Register(ctx, c[0], c[1], c[2])
		assert.Equal(t, KindValidation, kindOf(t, err))
	}
	assert.Empty(t, sender.sent)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Alice Again", "a@x.com", "other")
	assert.Equal(t, KindConflict, kindOf(t, err))
}

func TestRegisterMailFailureIsNotFatal(t *testing.T) {
	svc, _, sender, _ := newTestService(t)
	sender.outcome = mail.OutcomeServerError

	u, outcome, err := svc.Register(context.Background(), "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.NotNil(t, u)
	assert.Equal(t, mail.OutcomeServerError, outcome)
}

func TestLoginValidationAndNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "", "pw")
	assert.Equal(t, KindValidation, kindOf(t, err))

	_, err = svc.Login(ctx, "nobody@x.com", "pw")
	assert.Equal(t, KindNotFound, kindOf(t, err))
}

func TestLoginWithoutSecretIsConfigError(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	svc.jwter = &coreauth.JWTer{Issuer: "test", TTL: time.Hour}
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@x.com", "pw123456")
	assert.Equal(t, KindConfig, kindOf(t, err))
}

// ---------- RequestPasswordReset ----------

func TestRequestResetUnknownEmailNoSideEffects(t *testing.T) {
	svc, store, sender, _ := newTestService(t)

	// 未注册邮箱：成功返回，但什么都不发生
	err := svc.RequestPasswordReset(context.Background(), "ghost@x.com")
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
	assert.Empty(t, store.users)
}

func TestRequestResetStoresTokenAndMailsLink(t *testing.T) {
	svc, store, sender, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)
	sender.sent = nil

	require.NoError(t, svc.RequestPasswordReset(ctx, "a@x.com"))

	token, expiry := store.resetStateOf("a@x.com")
	require.NotNil(t, token)
	require.NotNil(t, expiry)
	assert.Len(t, *token, 64)
	_, err = hex.DecodeString(*token)
	assert.NoError(t, err, "token must be hex")
	assert.Equal(t, testBase.Add(time.Hour), *expiry)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].body, "http://localhost:5000/reset-password?token="+*token)
}

func TestRequestResetOverwritesPendingToken(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "a@x.com"))
	first, _ := store.resetStateOf("a@x.com")
	require.NotNil(t, first)
	old := *first

	require.NoError(t, svc.RequestPasswordReset(ctx, "a@x.com"))
	second, _ := store.resetStateOf("a@x.com")
	require.NotNil(t, second)
	assert.NotEqual(t, old, *second)

	// 旧 token 立即失效
	err = svc.ConfirmPasswordReset(ctx, old, "newpw789")
	assert.Equal(t, KindTokenInvalid, kindOf(t, err))
}

// ---------- ConfirmPasswordReset ----------

func TestConfirmResetSingleUse(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)
	require.NoError(t, svc.RequestPasswordReset(ctx, "a@x.com"))
	tokenPtr, _ := store.resetStateOf("a@x.com")
	token := *tokenPtr

	require.NoError(t, svc.ConfirmPasswordReset(ctx, token, "newpw789"))

	// 旧密码失效、新密码可登录
	_, err = svc.Login(ctx, "a@x.com", "pw123456")
	assert.Equal(t, KindUnauthorized, kindOf(t, err))
	_, err = svc.Login(ctx, "a@x.com", "newpw789")
	assert.NoError(t, err)

	// 同一条 token 不可复用
	err = svc.ConfirmPasswordReset(ctx, token, "again")
	assert.Equal(t, KindTokenInvalid, kindOf(t, err))

	token2, expiry2 := store.resetStateOf("a@x.com")
	assert.Nil(t, token2)
	assert.Nil(t, expiry2)
}

func TestConfirmResetExpiry(t *testing.T) {
	svc, store, _, clock := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)
	require.NoError(t, svc.RequestPasswordReset(ctx, "a@x.com"))
	tokenPtr, _ := store.resetStateOf("a@x.com")

	// 59 分钟：仍在窗口内
	*clock = testBase.Add(59 * time.Minute)
	require.NoError(t, svc.ConfirmPasswordReset(ctx, *tokenPtr, "newpw789"))

	// 再来一轮，61 分钟：已过期
	*clock = testBase
	require.NoError(t, svc.RequestPasswordReset(ctx, "a@x.com"))
	tokenPtr, _ = store.resetStateOf("a@x.com")
	*clock = testBase.Add(61 * time.Minute)
	err = svc.ConfirmPasswordReset(ctx, *tokenPtr, "latepw")
	assert.Equal(t, KindTokenInvalid, kindOf(t, err))
}

func TestConfirmResetValidationAndUnknownToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	err := svc.ConfirmPasswordReset(ctx, "", "newpw")
	assert.Equal(t, KindValidation, kindOf(t, err))
	err = svc.ConfirmPasswordReset(ctx, "sometoken", "")
	assert.Equal(t, KindValidation, kindOf(t, err))

	err = svc.ConfirmPasswordReset(ctx, strings.Repeat("ab", 32), "newpw")
	assert.Equal(t, KindTokenInvalid, kindOf(t, err))
}

func TestConfirmResetPartialStateCorrected(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "Alice", "a@x.com", "pw123456")
	require.NoError(t, err)

	// 制造半残状态：有 token、没过期时间
	tok := strings.Repeat("cd", 32)
	require.NoError(t, store.SaveResetToken(ctx, u.ID, &tok, nil))

	err = svc.ConfirmPasswordReset(ctx, tok, "newpw789")
	assert.Equal(t, KindTokenInvalid, kindOf(t, err))

	// 观察到即纠正
	token, expiry := store.resetStateOf("a@x.com")
	assert.Nil(t, token)
	assert.Nil(t, expiry)
}

func TestDependencyErrorSurfaces(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.findErr = errors.New("connection reset")

	_, err := svc.Login(context.Background(), "a@x.com", "pw")
	assert.Equal(t, KindDependency, kindOf(t, err))
}
