package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/response"
)

const HeaderIdempotencyKey = "Idempotency-Key"

var ErrRequestInFlight = apperror.New(
	apperror.CodeConflict,
	"A request with this idempotency key is still being processed",
	http.StatusConflict,
)

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST retried with the same
// Idempotency-Key by the same user. Only non-5xx responses are stored.
func Idempotency(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader(HeaderIdempotencyKey)
		if idempKey == "" || c.Request.Method != http.MethodPost || rdb == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		logger := contextutil.GetLogger(ctx, zap.L())
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), c.GetString(KeyUserID), idempKey)
		lockKey := cacheKey + ":lock"

		if val, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached cachedResponse
			if json.Unmarshal([]byte(val), &cached) == nil {
				logger.Debug("idempotent replay", zap.String("key", idempKey))
				c.Header("Idempotent-Replayed", "true")
				c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
				c.Abort()
				return
			}
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", 30*time.Second).Result()
		if err != nil {
			logger.Warn("idempotency lock unavailable, continuing", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Abort(c, ErrRequestInFlight)
			return
		}
		defer rdb.Del(ctx, lockKey)

		writer := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status >= http.StatusInternalServerError || writer.body.Len() == 0 {
			return
		}
		payload, err := json.Marshal(cachedResponse{Status: status, Body: writer.body.Bytes()})
		if err != nil {
			return
		}
		if err := rdb.Set(ctx, cacheKey, payload, ttl).Err(); err != nil {
			logger.Warn("idempotency store failed", zap.Error(err))
		}
	}
}
