package bloom_test

import (
	"fmt"
	"testing"

	"github.com/sitedex/sitedex/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.Test("https://example.com/page1"))

	f.Add("https://example.com/page1")

	assert.True(t, f.Test("https://example.com/page1"))
	assert.False(t, f.Test("https://example.com/page2"))
}

func TestFilter_NoFalseNegatives(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	for i := 0; i < 500; i++ {
		f.Add(fmt.Sprintf("https://example.com/page%d", i))
	}
	for i := 0; i < 500; i++ {
		assert.True(t, f.Test(fmt.Sprintf("https://example.com/page%d", i)))
	}
}
