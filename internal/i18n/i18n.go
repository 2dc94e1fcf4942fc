package i18n

import (
	"fmt"
	"strings"

	"github.com/cyberworld360/cyberworld-store/internal/constants"

	"github.com/gin-gonic/gin"
)

// ResolveLocale 从请求解析站点语言，优先 query，其次 Accept-Language。
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return constants.LocaleEnUS
	}
	if locale := normalizeLocale(c.Query("locale")); locale != "" {
		return locale
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := normalizeLocale(tag); locale != "" {
			return locale
		}
	}
	return constants.LocaleEnUS
}

// T 按语言与消息键取文案，缺失时回退英文，再回退键本身。
func T(locale, key string) string {
	if messages, ok := catalog[locale]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[constants.LocaleEnUS][key]; ok {
		return msg
	}
	return key
}

// Sprintf 取文案并格式化，模板缺失时直接返回键本身。
func Sprintf(locale, key string, args ...interface{}) string {
	template := T(locale, key)
	if template == key {
		return key
	}
	return fmt.Sprintf(template, args...)
}

func normalizeLocale(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	lower := strings.ToLower(tag)
	switch {
	case strings.HasPrefix(lower, "en"):
		return constants.LocaleEnUS
	case strings.HasPrefix(lower, "fr"):
		return constants.LocaleFrFR
	}
	return ""
}
