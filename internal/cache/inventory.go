package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	AdKeyPrefix   = "ad:%d"
)

const (
	UserTTL = 5 * time.Minute
	AdTTL   = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func AdKey(adID uint) string {
	return fmt.Sprintf(AdKeyPrefix, adID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateAd(ctx context.Context, adID uint) {
	Invalidate(ctx, AdKey(adID))
}
