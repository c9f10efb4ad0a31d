package pkg

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameSuffix(t *testing.T) {
	lower := regexp.MustCompile(`^[a-z]*$`)
	for _, n := range []uint{0, 3, 4, 12} {
		suffix := NameSuffix(n)
		assert.Len(t, suffix, int(n))
		assert.Regexp(t, lower, suffix)
	}
}
