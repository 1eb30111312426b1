package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-tasks-api/backend/internal/handlers"
)

// RequestIDHeader はリクエストIDを受け渡すヘッダー名です。
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware はリクエストごとにIDを割り当て、コンテキストとレスポンスヘッダーに設定するミドルウェアです。
// クライアントが有効なUUIDを送った場合はそれを引き継ぎます。
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		c.Set(handlers.ContextKeyRequestID, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// BodyLimitMiddleware はリクエストボディの大きさを制限するミドルウェアです。
// 超過した場合はフォームの解析が失敗し、ハンドラーが400を返します。
func BodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
