package auth

import "net/http"

// Kind 错误分类，决定对外 HTTP 状态
type Kind int

const (
	KindValidation   Kind = iota + 1 // 入参缺失/非法
	KindConflict                     // 邮箱已注册
	KindNotFound                     // 账号不存在
	KindUnauthorized                 // 密码不匹配
	KindTokenInvalid                 // reset token 无效或过期（三种情形对外不可区分）
	KindConfig                       // 缺少签名密钥等配置问题
	KindDependency                   // 存储/外部依赖失败
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "auth error"
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus 注册冲突对外仍是 400（接口面只承诺 201|400|500）
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindTokenInvalid:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func validationErr(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

func dependencyErr(msg string, err error) error {
	return &Error{Kind: KindDependency, Msg: msg, Err: err}
}
