package webapi

import (
	"time"

	"github.com/aqibshahzad4485/vless/pkg/model"
)

type PostUserRequest struct {
	Username   string `json:"username" validate:"omitempty,max=64"`
	Persistent bool   `json:"persistent"`
}

type CollisionResponse struct {
	Error    string `json:"error"`
	Username string `json:"username"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type User struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	CredentialID string    `json:"uuid"`
	CreatedAt    time.Time `json:"created_at"`
	LastActive   time.Time `json:"last_active"`
	TrafficUp    int64     `json:"traffic_up"`
	TrafficDown  int64     `json:"traffic_down"`
	IsPersistent bool      `json:"is_persistent"`
}

func GetUsers(users []model.User) []User {
	ret := make([]User, len(users))
	for k, v := range users {
		ret[k] = User{
			ID:           v.ID,
			Username:     v.Username,
			CredentialID: v.CredentialID,
			CreatedAt:    v.CreatedAt,
			LastActive:   v.LastActive,
			TrafficUp:    v.TrafficUp,
			TrafficDown:  v.TrafficDown,
			IsPersistent: v.IsPersistent,
		}
	}
	return ret
}
