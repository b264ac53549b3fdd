// 라우터 공통 미들웨어
// AuthMiddleware는 Bearer 액세스 토큰을 검증하고 컨텍스트에 사용자 주입
// CORSMiddleware는 허용 오리진 목록 기반으로 CORS 헤더 설정

package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ops-checklist/backend/internal/model"
	"github.com/ops-checklist/backend/internal/service"
)

const authUserKey = "auth_user"

// AuthMiddleware - Authorization 헤더의 Bearer 토큰 검증
// 토큰이 없거나 무효하면 401로 차단, preflight(OPTIONS)는 통과
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c)
			return
		}

		user, err := authService.ParseAccessToken(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func abortUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	c.Abort()
}

// GetAuthUser - AuthMiddleware가 주입한 사용자 조회 (없으면 nil)
func GetAuthUser(c *gin.Context) *model.AuthUser {
	value, ok := c.Get(authUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*model.AuthUser)
	return user
}

// CORSMiddleware - 허용 목록에 있는 오리진에만 CORS 헤더 부여
// 목록에 없는 오리진은 헤더 없이 통과시켜 브라우저가 차단하도록 둠
func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Vary", "Origin")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				if allowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
