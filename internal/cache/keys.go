package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func BatchKey(batchID uuid.UUID) string {
	return fmt.Sprintf("batch:%s", batchID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
