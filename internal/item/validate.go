// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
	"github.com/shopspring/decimal"
)

// MaxNameLength is the longest item name, in characters.
const MaxNameLength = 100

// MaxPrice is the highest accepted price.
var MaxPrice = decimal.RequireFromString("9999.99")

// Validation messages shown to the user.
const (
	MsgNameRequired    = "Name is required."
	MsgNameTooLong     = "Name must be at most 100 characters."
	MsgNameCharset     = "Name may contain only letters, digits and spaces."
	MsgPriceRequired   = "Price is required."
	MsgPriceFormat     = "Price must be a number (a dot is allowed)."
	MsgPriceRange      = "Price must be between 0 and 9999.99."
	MsgUnknownCategory = "Category does not exist."
)

var (
	nameRegex  = regexp.MustCompile(`^[\p{L}\p{N} ]+$`)
	priceRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,3})?$`)
)

// ValidateName checks an item name after trimming surrounding whitespace.
func ValidateName(name string) error {
	n := strings.TrimSpace(name)
	if n == "" {
		return oops.Code("ITEM_INVALID_NAME").Errorf(MsgNameRequired)
	}
	if utf8.RuneCountInString(n) > MaxNameLength {
		return oops.Code("ITEM_INVALID_NAME").With("max", MaxNameLength).Errorf(MsgNameTooLong)
	}
	if !nameRegex.MatchString(n) {
		return oops.Code("ITEM_INVALID_NAME").Errorf(MsgNameCharset)
	}
	return nil
}

// ValidatePrice checks a price as typed by a user. A decimal comma is
// accepted in place of the dot, with at most three fraction digits.
func ValidatePrice(price string) error {
	_, err := parsePrice(price)
	return err
}

// NormalizePrice validates price and rounds it half away from zero to two
// places, so "0,105" becomes 0.11.
func NormalizePrice(price string) (decimal.Decimal, error) {
	d, err := parsePrice(price)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

// NormalizeName trims an item name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

func parsePrice(price string) (decimal.Decimal, error) {
	p := strings.ReplaceAll(strings.TrimSpace(price), ",", ".")
	if p == "" {
		return decimal.Zero, oops.Code("ITEM_INVALID_PRICE").Errorf(MsgPriceRequired)
	}
	if !priceRegex.MatchString(p) {
		return decimal.Zero, oops.Code("ITEM_INVALID_PRICE").With("price", price).Errorf(MsgPriceFormat)
	}
	d, err := decimal.NewFromString(p)
	if err != nil {
		return decimal.Zero, oops.Code("ITEM_INVALID_PRICE").With("price", price).Errorf(MsgPriceFormat)
	}
	if d.IsNegative() || d.GreaterThan(MaxPrice) {
		return decimal.Zero, oops.Code("ITEM_INVALID_PRICE").With("price", price).Errorf(MsgPriceRange)
	}
	return d, nil
}
