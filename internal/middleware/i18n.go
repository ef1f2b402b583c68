// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", resolveLanguage(c.GetHeader("Accept-Language"), defaultLang))
		c.Next()
	}
}

// resolveLanguage maps the first Accept-Language entry to a bundled locale.
// Handles values like "zh-CN,zh;q=0.9,en;q=0.8".
func resolveLanguage(header, defaultLang string) string {
	if header == "" {
		return defaultLang
	}

	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch strings.ToLower(first) {
	case "zh", "zh-cn", "zh-hans", "zh_cn", "zh-sg":
		return "zh_CN"
	case "en", "en-us", "en-gb":
		return "en"
	default:
		return defaultLang
	}
}
