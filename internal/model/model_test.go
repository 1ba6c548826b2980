package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumValid(t *testing.T) {
	assert.True(t, CategorySeeds.Valid())
	assert.False(t, Category("Livestock").Valid())
	assert.True(t, PaymentCashOnDelivery.Valid())
	assert.False(t, PaymentTerms("Net 15").Valid())
	assert.True(t, CurrencyAUD.Valid())
	assert.False(t, Currency("usd").Valid())
	assert.True(t, UnitBags.Valid())
	assert.True(t, BusinessTypeOther.Valid())
	assert.False(t, Role("root").Valid())
	assert.Len(t, Categories, 9)
	assert.Len(t, Units, 8)
	assert.Len(t, BusinessTypes, 6)
	assert.Len(t, PaymentTermsValues, 5)
	assert.Len(t, Currencies, 5)
}

func TestJSONColumns(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var tags StringList
	require.NoError(t, tags.Scan([]byte(`["organic","bulk"]`)))
	assert.Equal(t, StringList{"organic", "bulk"}, tags)

	require.NoError(t, tags.Scan(nil))
	assert.Empty(t, tags)

	var tiers BulkTiers
	require.NoError(t, tiers.Scan(`[{"quantity":5,"price":1.5}]`))
	assert.Equal(t, 5, tiers[0].Quantity)

	assert.Error(t, tiers.Scan(42))
}

func TestPricingWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	p := Pricing{IsActive: true, EffectiveDate: past}
	assert.False(t, p.IsExpired(now))
	assert.True(t, p.IsEffective(now))

	p.ExpiryDate = &past
	assert.True(t, p.IsExpired(now))
	assert.False(t, p.IsEffective(now))

	p.ExpiryDate = nil
	p.EffectiveDate = future
	assert.False(t, p.IsEffective(now))

	p.EffectiveDate = past
	p.IsActive = false
	assert.False(t, p.IsEffective(now))
}

func TestAddressFull(t *testing.T) {
	a := Address{Street: "12 Mill Road", City: "Fresno", State: "CA", ZipCode: "93650", Country: "USA"}
	assert.Equal(t, "12 Mill Road, Fresno, CA 93650, USA", a.Full())
}
