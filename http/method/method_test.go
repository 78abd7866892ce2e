package method

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethod(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		for _, method := range List {
			assert.Equal(t, method, Parse(method.String()))
		}
	})

	t.Run("not allowed", func(t *testing.T) {
		for _, token := range []string{"", "get", "Post", "PUT", "DELETE", "TRY", "GET "} {
			assert.Equal(t, Unknown, Parse(token), token)
		}
	})
}
