//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// ProviderName identifies a translation backend
// ENUM(libre,tencent,google,baidu,youdao)
type ProviderName string
