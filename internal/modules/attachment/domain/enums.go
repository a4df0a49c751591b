//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Category is the coarse kind of a downloaded attachment
// ENUM(image,video,other)
type Category string
