package view

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/folio/internal/site"
)

// FuncMap 返回页面模板使用的函数集合。
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"isOdd": func(i int) bool {
			return i%2 == 1
		},
		"markdown":   markdownOrText,
		"socialIcon": socialIconHTML,
		"imageSrc":   ImageSrc,
		"humanBytes": HumanBytes,
	}
}

// HeadingClass 返回标题字体对应的样式类。
func HeadingClass(font string) string {
	if strings.EqualFold(strings.TrimSpace(font), site.HeadingFontSans) {
		return "font-sans"
	}
	return "font-serif"
}

func socialIconHTML(key string) template.HTML {
	return template.HTML(SocialIconSVG(key))
}

// ImageSrc 放行内联的位图 data URI，其余地址交给模板自行转义。
func ImageSrc(raw string) any {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	for _, prefix := range []string{"data:image/jpeg;", "data:image/png;", "data:image/gif;", "data:image/webp;"} {
		if strings.HasPrefix(lower, prefix) {
			return template.URL(trimmed)
		}
	}
	return trimmed
}

// HumanBytes 把字节数格式化为 B、KB 或 MB。
func HumanBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
