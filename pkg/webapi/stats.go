package webapi

import (
	"time"

	"github.com/aqibshahzad4485/vless/pkg/model"
)

type Event struct {
	Time    time.Time `json:"time"`
	Action  string    `json:"action"`
	Details string    `json:"details"`
}

type StatsResponse struct {
	TotalUsers        int64   `json:"total_users"`
	ActiveUsersLast1h int64   `json:"active_users_last_1h"`
	History           []Event `json:"history"`
}

func GetStats(total, active int64, events []model.Event) *StatsResponse {
	history := make([]Event, len(events))
	for k, v := range events {
		history[k] = Event{
			Time:    v.Timestamp,
			Action:  v.Action,
			Details: v.Details,
		}
	}
	return &StatsResponse{
		TotalUsers:        total,
		ActiveUsersLast1h: active,
		History:           history,
	}
}
