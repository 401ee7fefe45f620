package request

import (
	"errors"
	"strings"
)

const (
	MinAmountLiters = 20
	MaxAmountLiters = 20000
)

var (
	ErrInvalidAmount = errors.New("amount out of deliverable range")
	ErrEmptyAddress  = errors.New("delivery address is required")
)

// Amount is the requested water volume in liters.
type Amount struct {
	liters int
}

func NewAmount(liters int) (Amount, error) {
	if liters < MinAmountLiters || liters > MaxAmountLiters {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{liters: liters}, nil
}

func (a Amount) Liters() int {
	return a.liters
}

type Address struct {
	value string
}

func NewAddress(value string) (Address, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Address{}, ErrEmptyAddress
	}
	return Address{value: value}, nil
}

func (a Address) String() string {
	return a.value
}
