package uasset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommonString(t *testing.T) {
	assert.Equal(t, "AABB", CommonString(0))
	assert.Equal(t, "AnimationClip", CommonString(5))
	assert.Equal(t, "int", CommonString(222))
	assert.Equal(t, "m_Name", CommonString(461))
	assert.Equal(t, "string", CommonString(874))
}

func TestCommonString_UnknownOffset(t *testing.T) {
	// offsets between entries do not resolve; the placeholder keeps the
	// file readable
	assert.Equal(t, "unknown_3", CommonString(3))
}
