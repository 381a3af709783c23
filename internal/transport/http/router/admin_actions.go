package router

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-foodserve-api/internal/domain"
	"go-foodserve-api/internal/repo"
	httpez "go-foodserve-api/internal/transport/http/ez"
)

// 管理端接口集中在这里注册
func mountAdminActions(admin *gin.RouterGroup, users *repo.UserRepo) {
	ez := httpez.New(admin)

	// --- GET /admin/v1/users  用户列表 ---
	type listQ struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"` // 按 email/fullName 模糊搜
	}
	type row struct {
		ID        string      `json:"id"`
		Email     string      `json:"email"`
		FullName  string      `json:"fullName"`
		Role      domain.Role `json:"role"`
		CreatedAt time.Time   `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}
	httpez.RegisterAction[listQ, listOut](ez, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  []string{"admin"}, // 分组已走 AuthJWT("admin")，这里双保险
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			us, total, err := users.List(c.Request.Context(), in.Q, in.Offset, in.Limit)
			if err != nil {
				return listOut{}, httpez.Internal("list users failed", err)
			}
			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, Email: u.Email, FullName: u.FullName,
					Role: u.Role, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	// --- POST /admin/v1/users/:id/role  调整角色 ---
	type roleIn struct {
		Role domain.Role `json:"role"`
	}
	httpez.RegisterAction[roleIn, gin.H](ez, httpez.Action[roleIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/role",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *roleIn) (gin.H, error) {
			id := c.Param("id")
			if id == "" {
				return nil, httpez.BadRequest("missing id")
			}
			if in.Role != domain.RoleMember && in.Role != domain.RoleAdmin {
				return nil, httpez.BadRequest("role must be member or admin")
			}
			if err := users.SetRole(c.Request.Context(), id, in.Role); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, httpez.NotFound("user not found")
				}
				return nil, httpez.Internal("set role failed", err)
			}
			return gin.H{"id": id, "role": in.Role}, nil
		},
	})
}
