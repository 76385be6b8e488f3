package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidClockTime(t *testing.T) {
	valid := []string{"00:00", "07:30", "19:00", "23:59"}
	for _, v := range valid {
		assert.True(t, validClockTime(v), "%q should be valid", v)
	}

	invalid := []string{"", "24:00", "19:60", "7:00", "19:0", "19-00", "aa:bb", "19:00:00"}
	for _, v := range invalid {
		assert.False(t, validClockTime(v), "%q should be invalid", v)
	}
}
