package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTariffAmountFor(t *testing.T) {
	tariff := Tariff{Kind: PremiumGems, PerPull: 160, TenPullDiscount: 0.9}

	assert.Equal(t, int64(0), tariff.AmountFor(0))
	assert.Equal(t, int64(160), tariff.AmountFor(1))
	assert.Equal(t, int64(1440), tariff.AmountFor(10))
	// mixed: one discounted ten plus two singles
	assert.Equal(t, int64(1760), tariff.AmountFor(12))
}

func TestTariffExplicitTenPullWins(t *testing.T) {
	tariff := Tariff{Kind: PremiumGems, PerPull: 160, PerTenPull: 1500, TenPullDiscount: 0.9}
	assert.Equal(t, int64(1500), tariff.AmountFor(10))
}

func TestTariffNoDiscount(t *testing.T) {
	tariff := Tariff{Kind: FriendshipPoints, PerPull: 100}
	assert.Equal(t, int64(1000), tariff.AmountFor(10))
}

func TestTariffTable(t *testing.T) {
	tariff := Tariff{Kind: PremiumGems, PerPull: 160, TenPullDiscount: 0.9}
	table, err := tariff.Table([]int{1, 10})
	require.NoError(t, err)
	assert.Equal(t, Cost{Kind: PremiumGems, Amount: 160}, table[1])
	assert.Equal(t, Cost{Kind: PremiumGems, Amount: 1440}, table[10])
}

func TestTariffTableRejectsBadConfig(t *testing.T) {
	_, err := Tariff{Kind: Kind(42), PerPull: 10}.Table([]int{1})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Tariff{Kind: PremiumGems, PerPull: 0}.Table([]int{1})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Tariff{Kind: PremiumGems, PerPull: 10, TenPullDiscount: 1.5}.Table([]int{1})
	assert.Error(t, err)

	_, err = Tariff{Kind: PremiumGems, PerPull: 10}.Table([]int{0})
	assert.Error(t, err)
}
