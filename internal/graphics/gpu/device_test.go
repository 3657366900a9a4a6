package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleValidity(t *testing.T) {
	assert.False(t, Buffer{}.Valid())
	assert.False(t, Buffer{VAO: 1}.Valid())
	assert.True(t, Buffer{VAO: 1, VBO: 2}.Valid())

	assert.False(t, Texture(0).Valid())
	assert.True(t, Texture(3).Valid())

	assert.False(t, Program(0).Valid())

	// location 0 is a real GL location
	assert.True(t, Uniform(0).Valid())
	assert.False(t, InvalidUniform.Valid())
}

func TestFloatsPerVertex(t *testing.T) {
	l := VertexLayout{Stride: 32}
	assert.Equal(t, 8, l.FloatsPerVertex())
}
