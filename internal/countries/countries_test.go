package countries

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	assert := assert.New(t)

	c, ok := Lookup("Portugal")
	assert.True(ok)
	assert.Equal("PT", c.Code)
	assert.Equal("EUR", c.Currency)

	// Case-insensitive.
	c, ok = Lookup("uNiTeD sTaTeS")
	assert.True(ok)
	assert.Equal("US", c.Code)
	assert.Equal("USD", c.Currency)

	_, ok = Lookup("Atlantis")
	assert.False(ok)
}

func TestCodeAndCurrencyFor(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("BR", CodeFor("Brazil"))
	assert.Equal("BRL", CurrencyFor("Brazil"))
	assert.Empty(CodeFor("Atlantis"))
	assert.Empty(CurrencyFor(""))
}
