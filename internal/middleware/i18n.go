package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// I18nMiddleware picks the response language from Accept-Language, falling
// back to defaultLang.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", parseLanguage(c.GetHeader("Accept-Language"), defaultLang))
		c.Next()
	}
}

// parseLanguage handles headers like "pt-BR,pt;q=0.9,en;q=0.8". Only the
// first preference is considered.
func parseLanguage(header, defaultLang string) string {
	if header == "" {
		return defaultLang
	}

	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch strings.ToLower(strings.ReplaceAll(first, "_", "-")) {
	case "pt", "pt-br", "pt-pt":
		return "pt_BR"
	case "en", "en-us", "en-gb":
		return "en"
	default:
		return defaultLang
	}
}
