package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunRequiresDSN(t *testing.T) {
	err := Run("", "up")
	assert.EqualError(t, err, "DATABASE_URL is not set")
}

func TestRunRejectsUnknownDirection(t *testing.T) {
	for _, dir := range []string{"", "sideways", "UP"} {
		err := Run("postgres://localhost/leads", dir)
		assert.Error(t, err, "direction %q", dir)
		assert.Contains(t, err.Error(), "direction must be up or down")
	}
}
