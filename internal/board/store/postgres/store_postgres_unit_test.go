package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_RequiresPool(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilPool)
}
