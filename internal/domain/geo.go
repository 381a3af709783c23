package domain

import "time"

// 地理层级：State → City → Restaurant → RestaurantOwner

type State struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Code      string    `gorm:"size:16" json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (State) TableName() string { return "states" }

type City struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	StateID   string    `gorm:"size:36;index;not null" json:"stateId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (City) TableName() string { return "cities" }

type Restaurant struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Name          string    `gorm:"size:191;not null" json:"name"`
	StreetAddress string    `gorm:"size:255" json:"streetAddress"`
	ZipCode       string    `gorm:"size:16" json:"zipCode"`
	CityID        string    `gorm:"size:36;index;not null" json:"cityId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Restaurant) TableName() string { return "restaurants" }

// RestaurantOwner 归属关系，OwnerID 指向 users.id
type RestaurantOwner struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	RestaurantID string    `gorm:"size:36;index;not null" json:"restaurantId"`
	OwnerID      string    `gorm:"size:36;index;not null" json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (RestaurantOwner) TableName() string { return "restaurant_owners" }
