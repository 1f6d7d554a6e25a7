package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`users`", QuoteIdentifier("users"))
	assert.Equal(t, "`weird``name`", QuoteIdentifier("weird`name"))
}

func TestQuoteQualified(t *testing.T) {
	assert.Equal(t, "`users`.`id`", QuoteQualified("users", "id"))
	assert.Equal(t, "`id`", QuoteQualified("", "id"))
}

func TestQuoteString(t *testing.T) {
	assert.Equal(t, "'hello'", QuoteString("hello"))
	assert.Equal(t, "'it''s'", QuoteString("it's"))
}

func TestJSONPath(t *testing.T) {
	assert.Equal(t, "'$.address.city'", JSONPath("address.city"))
	assert.Equal(t, "'$.rating'", JSONPath("rating"))
}
