package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRentExemptBalance(t *testing.T) {
	assert.EqualValues(t, 890_880, RentExemptBalance(0))
	assert.EqualValues(t, 2_039_280, RentExemptBalance(165))
	assert.EqualValues(t, 1_392_000, RentExemptBalance(72))
	assert.EqualValues(t, 8_491_200, RentExemptBalance(1092))
}
