package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-foodserve-api/internal/core/cache"
	"go-foodserve-api/internal/domain"
	httpez "go-foodserve-api/internal/transport/http/ez"
)

const (
	keyStates      = "geo:states"
	keyCitiesOf    = "geo:cities:" // + stateID
	statesCacheTTL = 5 * time.Minute
	citiesCacheTTL = time.Minute // 城市列表只靠 TTL 过期
)

// 地理层级 CRUD：读公开、写走鉴权分组
func mountGeoActions(api, authed *gin.RouterGroup, db *gorm.DB, cc *cache.Cache) {
	ezPublic := httpez.New(api)

	// --- GET /states（缓存全量列表）---
	type stateList struct {
		Items []domain.State `json:"items"`
	}
	httpez.RegisterAction[struct{}, *stateList](ezPublic, httpez.Action[struct{}, *stateList]{
		Method: http.MethodGet,
		Path:   "/states",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*stateList, error) {
			out, err := cache.GetOrLoadJSON[stateList](cc, c.Request.Context(), keyStates, statesCacheTTL,
				func(ctx context.Context) (*stateList, error) {
					var items []domain.State
					if err := db.WithContext(ctx).Order("name").Find(&items).Error; err != nil {
						return nil, httpez.Internal("list states failed", err)
					}
					return &stateList{Items: items}, nil
				})
			if err != nil {
				return nil, err
			}
			if out == nil {
				out = &stateList{Items: []domain.State{}}
			}
			return out, nil
		},
	})

	// --- GET /states/:id/cities（按州缓存）---
	type cityList struct {
		Items []domain.City `json:"items"`
	}
	httpez.RegisterAction[struct{}, *cityList](ezPublic, httpez.Action[struct{}, *cityList]{
		Method: http.MethodGet,
		Path:   "/states/:id/cities",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*cityList, error) {
			stateID := c.Param("id")
			out, err := cache.GetOrLoadJSON[cityList](cc, c.Request.Context(), keyCitiesOf+stateID, citiesCacheTTL,
				func(ctx context.Context) (*cityList, error) {
					var items []domain.City
					if err := db.WithContext(ctx).Where("state_id = ?", stateID).Order("name").Find(&items).Error; err != nil {
						return nil, httpez.Internal("list cities failed", err)
					}
					return &cityList{Items: items}, nil
				})
			if err != nil {
				return nil, err
			}
			if out == nil {
				out = &cityList{Items: []domain.City{}}
			}
			return out, nil
		},
	})

	invalidateStates := func(c *gin.Context) {
		cc.Invalidate(c.Request.Context(), keyStates)
	}

	httpez.Crud[domain.State](httpez.CrudConfig[domain.State]{
		DB: db, Group: authed, ReadGroup: api, Path: "/states",
		New:         func() *domain.State { return &domain.State{} },
		AllowCreate: true, AllowGet: true, AllowUpdate: true, AllowDelete: true,
		// AllowList 关闭：列表走上面的缓存端点
		Hooks:   httpez.CrudHooks[domain.State]{AfterWrite: invalidateStates},
		OrderBy: "created_at DESC",
	})

	httpez.Crud[domain.City](httpez.CrudConfig[domain.City]{
		DB: db, Group: authed, ReadGroup: api, Path: "/cities",
		New:         func() *domain.City { return &domain.City{} },
		AllowCreate: true, AllowList: true, AllowGet: true, AllowUpdate: true, AllowDelete: true,
		OrderBy:     "created_at DESC",
	})

	httpez.Crud[domain.Restaurant](httpez.CrudConfig[domain.Restaurant]{
		DB: db, Group: authed, ReadGroup: api, Path: "/restaurants",
		New:         func() *domain.Restaurant { return &domain.Restaurant{} },
		AllowCreate: true, AllowList: true, AllowGet: true, AllowUpdate: true, AllowDelete: true,
		OrderBy:     "created_at DESC",
	})

	// 归属关系是"我的"资源：按 OwnerID 过滤，读写都要登录
	httpez.Crud[domain.RestaurantOwner](httpez.CrudConfig[domain.RestaurantOwner]{
		DB: db, Group: authed, Path: "/restaurant-owners",
		New:         func() *domain.RestaurantOwner { return &domain.RestaurantOwner{} },
		Owned:       true,
		AllowCreate: true, AllowList: true, AllowGet: true, AllowDelete: true,
		OrderBy:     "created_at DESC",
	})
}
