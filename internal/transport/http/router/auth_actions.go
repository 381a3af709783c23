package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-foodserve-api/internal/domain"
	authfeat "go-foodserve-api/internal/feature/auth"
	httpez "go-foodserve-api/internal/transport/http/ez"
)

// 认证相关接口。入参不做 binding 校验，缺失字段的语义
// 由业务层统一判定并给出可读的错误信息。
func mountAuthActions(api, authed *gin.RouterGroup, svc *authfeat.Service) {
	ezPublic := httpez.New(api)

	// --- POST /auth/register ---
	type registerIn struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type registerOut struct {
		Message           string `json:"message"`
		UserID            string `json:"userId"`
		EmailNotification string `json:"emailNotification"`
	}
	httpez.RegisterAction[registerIn, registerOut](ezPublic, httpez.Action[registerIn, registerOut]{
		Method:   http.MethodPost,
		Path:     "/auth/register",
		Binder:   httpez.BindJSON,
		OKStatus: http.StatusCreated,
		Handler: func(c *gin.Context, in *registerIn) (registerOut, error) {
			u, outcome, err := svc.Register(c.Request.Context(), in.FullName, in.Email, in.Password)
			if err != nil {
				return registerOut{}, err
			}
			return registerOut{
				Message:           "User created successfully",
				UserID:            u.ID,
				EmailNotification: string(outcome),
			}, nil
		},
	})

	// --- POST /auth/login ---
	type loginIn struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type loginOut struct {
		Message string      `json:"message"`
		Token   string      `json:"token"`
		UserID  string      `json:"userId"`
		Email   string      `json:"email"`
		Role    domain.Role `json:"role"`
	}
	httpez.RegisterAction[loginIn, loginOut](ezPublic, httpez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			res, err := svc.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{
				Message: "Login successful",
				Token:   res.Token,
				UserID:  res.UserID,
				Email:   res.Email,
				Role:    res.Role,
			}, nil
		},
	})

	// --- POST /auth/request-reset ---
	// 邮箱存在与否对外同一应答，防枚举；不要"修复"成区分状态
	type requestResetIn struct {
		Email string `json:"email"`
	}
	type messageOut struct {
		Message string `json:"message"`
	}
	httpez.RegisterAction[requestResetIn, messageOut](ezPublic, httpez.Action[requestResetIn, messageOut]{
		Method: http.MethodPost,
		Path:   "/auth/request-reset",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *requestResetIn) (messageOut, error) {
			if err := svc.RequestPasswordReset(c.Request.Context(), in.Email); err != nil {
				return messageOut{}, err
			}
			return messageOut{Message: "If the email exists, a reset link has been sent."}, nil
		},
	})

	// --- POST /auth/reset-password ---
	type resetIn struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	httpez.RegisterAction[resetIn, messageOut](ezPublic, httpez.Action[resetIn, messageOut]{
		Method: http.MethodPost,
		Path:   "/auth/reset-password",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *resetIn) (messageOut, error) {
			if err := svc.ConfirmPasswordReset(c.Request.Context(), in.Token, in.NewPassword); err != nil {
				return messageOut{}, err
			}
			return messageOut{Message: "Password has been reset successfully"}, nil
		},
	})

	// --- GET /me（鉴权）---
	ezAuth := httpez.New(authed)

	type meOut struct {
		ID       string      `json:"id"`
		Email    string      `json:"email"`
		FullName string      `json:"fullName"`
		Role     domain.Role `json:"role"`
	}
	httpez.RegisterAction[struct{}, meOut](ezAuth, httpez.Action[struct{}, meOut]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (meOut, error) {
			u, err := svc.Profile(c.Request.Context(), c.GetString("userId"))
			if err != nil {
				return meOut{}, err
			}
			return meOut{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}, nil
		},
	})
}
