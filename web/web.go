// Package web 内嵌页面模板与静态资源。
package web

import "embed"

// Templates 包含 templates/ 下的页面模板。
//
//go:embed templates
var Templates embed.FS

// Static 包含 static/ 下的样式与脚本。
//
//go:embed static
var Static embed.FS
