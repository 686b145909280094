// Package migrations содержит SQL схемы журнала запросов
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
