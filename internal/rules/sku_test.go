package rules

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/sergioamr/farm-management/internal/model"
	"github.com/stretchr/testify/assert"
)

var skuPattern = regexp.MustCompile(`^[A-Z]{3}-\d{6}-[A-Z0-9]{3}$`)

func TestGenerateSKUFormat(t *testing.T) {
	gen := NewSKUGenerator()
	for _, category := range model.Categories {
		sku := gen.Generate(category)
		assert.Regexp(t, skuPattern, sku, "category %s", category)
	}
}

func TestGenerateSKUParts(t *testing.T) {
	gen := &SKUGenerator{
		Now:  func() time.Time { return time.UnixMilli(1700000123456) },
		Rand: rand.New(rand.NewSource(1)),
	}

	sku := gen.Generate(model.CategoryMachineryParts)
	assert.Equal(t, "MAC-123456", sku[:10])
	assert.Regexp(t, skuPattern, sku)
}
