package utils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	hyphenRunRe  = regexp.MustCompile(`-{2,}`)

	// Windows 文件名非法字符 + URL 敏感字符
	slugReplacer = strings.NewReplacer(
		"/", "-",
		"\\", "-",
		"&", "and",
		"%", "",
		"?", "",
		"#", "",
		":", "",
		"*", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
)

// Slugify 把名称转为 URL 友好的 slug
// 规则：小写、空白折叠为连字符、& 换为 and、剔除文件名/URL 非法字符、
// 连续连字符折叠、首尾连字符去除；空输入固定返回 "unknown"
// 非 ASCII 字符（阿拉伯语名称）原样保留
func Slugify(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return "unknown"
	}

	s = strings.ToLower(s)
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = slugReplacer.Replace(s)
	s = hyphenRunRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return "unknown"
	}
	return s
}

// SafeFilename 把名称转为安全文件名：空白折叠为连字符，剔除非法字符，小写
func SafeFilename(name string) string {
	s := whitespaceRe.ReplaceAllString(name, "-")
	s = slugReplacer.Replace(s)
	return strings.ToLower(s)
}
