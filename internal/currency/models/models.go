package models

import "regionx/pkg/domain"

// Account is the balance of one holder.
type Account struct {
	Free     domain.Balance `json:"free"`
	Reserved domain.Balance `json:"reserved"`
}

// Dead reports whether the account holds nothing and can be reaped.
func (a Account) Dead() bool {
	return a.Free == 0 && a.Reserved == 0
}
