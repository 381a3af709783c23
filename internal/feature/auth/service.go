package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	coreauth "go-foodserve-api/internal/core/auth"
	"go-foodserve-api/internal/core/mail"
	"go-foodserve-api/internal/domain"
	"go-foodserve-api/internal/repo"
	"go-foodserve-api/pkg/utils"
)

// reset token 有效窗口，过期惰性判定（confirm 时检查，无后台清扫）
const resetTokenTTL = time.Hour

type Service struct {
	repo         domain.UserRepository
	jwter        *coreauth.JWTer
	mailer       mail.Sender
	log          *zap.Logger
	resetBaseURL string
	now          func() time.Time
}

func NewService(r domain.UserRepository, j *coreauth.JWTer, m mail.Sender, l *zap.Logger, resetBaseURL string) *Service {
	if resetBaseURL == "" {
		resetBaseURL = "http://localhost:5000"
	}
	return &Service{
		repo:         r,
		jwter:        j,
		mailer:       m,
		log:          l,
		resetBaseURL: strings.TrimRight(resetBaseURL, "/"),
		now:          time.Now,
	}
}

// Register 注册：查重 → 散列 → 落库 → 尽力发欢迎邮件。
// 邮件结果只作为附带信息返回，不影响注册成败。
func (s *Service) Register(ctx context.Context, fullName, email, password string) (*domain.User, mail.Outcome, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" || password == "" {
		return nil, "", validationErr("fullName, email and password are required")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", dependencyErr("lookup user failed", err)
	}
	if existing != nil {
		return nil, "", &Error{Kind: KindConflict, Msg: "user with this email already exists"}
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", dependencyErr("hash password failed", err)
	}

	u := &domain.User{
		ID:           utils.NewID(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleMember,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// 预检查与插入之间的并发窗口：唯一索引冲突同样按“已存在”处理
		if repo.IsDupKey(err) {
			return nil, "", &Error{Kind: KindConflict, Msg: "user with this email already exists"}
		}
		return nil, "", dependencyErr("create user failed", err)
	}

	outcome := s.mailer.Send(ctx, u.Email, u.FullName,
		"Account Created Successfully",
		"Welcome to our Food Services")
	return u, outcome, nil
}

type LoginResult struct {
	Token  string      `json:"token"`
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, validationErr("email and password are required")
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, dependencyErr("lookup user failed", err)
	}
	if u == nil {
		return nil, &Error{Kind: KindNotFound, Msg: "user not found"}
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, &Error{Kind: KindUnauthorized, Msg: "invalid password"}
	}

	token, err := s.jwter.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		if errors.Is(err, coreauth.ErrNoSecret) {
			return nil, &Error{Kind: KindConfig, Msg: "token signing is not configured", Err: err}
		}
		return nil, dependencyErr("issue token failed", err)
	}
	return &LoginResult{Token: token, UserID: u.ID, Email: u.Email, Role: u.Role}, nil
}

// RequestPasswordReset 对外永远同一个笼统应答（防账号枚举），
// 邮箱不存在时不产生任何副作用。
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return validationErr("email is required")
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return dependencyErr("lookup user failed", err)
	}
	if u == nil {
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return dependencyErr("generate reset token failed", err)
	}
	expiry := s.now().Add(resetTokenTTL)
	// 重复申请直接覆盖旧 token，单用户同时至多一个有效 token
	if err := s.repo.SaveResetToken(ctx, u.ID, &token, &expiry); err != nil {
		return dependencyErr("save reset token failed", err)
	}

	name := u.FullName
	if name == "" {
		name = "User"
	}
	resetURL := s.resetBaseURL + "/reset-password?token=" + token
	outcome := s.mailer.Send(ctx, u.Email, name,
		"Password Reset Request",
		"You requested a password reset. Click the link to reset your password: "+resetURL)
	if outcome != mail.OutcomeSent {
		s.log.Warn("reset mail not delivered",
			zap.String("user_id", u.ID),
			zap.String("outcome", string(outcome)),
		)
	}
	return nil
}

// ConfirmPasswordReset 查不到 token、缺过期时间、已过期三种情况
// 对调用方同一个错误，不给猜 token 的回声
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return validationErr("token and newPassword are required")
	}

	invalid := &Error{Kind: KindTokenInvalid, Msg: "invalid or expired reset token"}

	u, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		return dependencyErr("lookup reset token failed", err)
	}
	if u == nil {
		return invalid
	}
	if u.ResetTokenExpiry == nil {
		// 半残状态（有 token 没过期时间）：视为无效并立即纠正
		_ = s.repo.SaveResetToken(ctx, u.ID, nil, nil)
		return invalid
	}
	if s.now().After(*u.ResetTokenExpiry) {
		return invalid
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return dependencyErr("hash password failed", err)
	}
	// 新散列与 token 清空同一条 UPDATE
	if err := s.repo.ResetPassword(ctx, u.ID, hash); err != nil {
		return dependencyErr("reset password failed", err)
	}
	return nil
}

func (s *Service) Profile(ctx context.Context, uid string) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, dependencyErr("lookup user failed", err)
	}
	if u == nil {
		return nil, &Error{Kind: KindNotFound, Msg: "user not found"}
	}
	return u, nil
}
