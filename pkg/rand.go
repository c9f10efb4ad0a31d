package pkg

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

// NameSuffix returns n random lowercase letters, used to keep throwaway
// container names apart between runs.
func NameSuffix(n uint) string {
	return strings.ToLower(gofakeit.LetterN(n))
}
