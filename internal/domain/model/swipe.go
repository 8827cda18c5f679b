package model

import (
	"time"

	"github.com/nrattyp233/create-a-date/internal/domain/enums"
)

type Swipe struct {
	ID           int64                `json:"id"`
	ActorUserID  int64                `json:"actor_user_id"`
	TargetUserID int64                `json:"target_user_id"`
	Direction    enums.SwipeDirection `json:"direction"`
	CreatedAt    time.Time            `json:"created_at"`
}
