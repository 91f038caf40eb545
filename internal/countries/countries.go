// Package countries is the static country lookup table consumed by the
// workflow engine and the purchase path: country name to ISO code and
// trading currency.
package countries

import "strings"

// Country holds the lookup result for one country.
type Country struct {
	Code     string
	Currency string
}

var byName = map[string]Country{
	"united states":  {Code: "US", Currency: "USD"},
	"usa":            {Code: "US", Currency: "USD"},
	"canada":         {Code: "CA", Currency: "CAD"},
	"mexico":         {Code: "MX", Currency: "MXN"},
	"brazil":         {Code: "BR", Currency: "BRL"},
	"united kingdom": {Code: "GB", Currency: "GBP"},
	"ireland":        {Code: "IE", Currency: "EUR"},
	"france":         {Code: "FR", Currency: "EUR"},
	"germany":        {Code: "DE", Currency: "EUR"},
	"spain":          {Code: "ES", Currency: "EUR"},
	"portugal":       {Code: "PT", Currency: "EUR"},
	"italy":          {Code: "IT", Currency: "EUR"},
	"netherlands":    {Code: "NL", Currency: "EUR"},
	"belgium":        {Code: "BE", Currency: "EUR"},
	"luxembourg":     {Code: "LU", Currency: "EUR"},
	"austria":        {Code: "AT", Currency: "EUR"},
	"greece":         {Code: "GR", Currency: "EUR"},
	"switzerland":    {Code: "CH", Currency: "CHF"},
	"sweden":         {Code: "SE", Currency: "SEK"},
	"norway":         {Code: "NO", Currency: "NOK"},
	"denmark":        {Code: "DK", Currency: "DKK"},
	"finland":        {Code: "FI", Currency: "EUR"},
	"poland":         {Code: "PL", Currency: "PLN"},
	"czech republic": {Code: "CZ", Currency: "CZK"},
	"romania":        {Code: "RO", Currency: "RON"},
	"turkey":         {Code: "TR", Currency: "TRY"},
	"united arab emirates": {Code: "AE", Currency: "AED"},
	"saudi arabia":         {Code: "SA", Currency: "SAR"},
	"japan":                {Code: "JP", Currency: "JPY"},
	"china":                {Code: "CN", Currency: "CNY"},
	"singapore":            {Code: "SG", Currency: "SGD"},
	"australia":            {Code: "AU", Currency: "AUD"},
	"new zealand":          {Code: "NZ", Currency: "NZD"},
	"south africa":         {Code: "ZA", Currency: "ZAR"},
	"india":                {Code: "IN", Currency: "INR"},
}

// Lookup resolves a country name, case-insensitively. The second return
// value is false when the country is unknown.
func Lookup(name string) (Country, bool) {
	c, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// CodeFor returns the ISO code for a country name, or "" when unknown.
func CodeFor(name string) string {
	c, _ := Lookup(name)
	return c.Code
}

// CurrencyFor returns the trading currency for a country name, or ""
// when unknown.
func CurrencyFor(name string) string {
	c, _ := Lookup(name)
	return c.Currency
}
