package wallet

import (
	"fmt"
	"math"
)

// Account names one of the three balances a player holds.
type Account string

const (
	AccountWallet Account = "wallet"
	AccountBank   Account = "bank"
	AccountStash  Account = "stash"
)

func (a Account) Valid() bool {
	switch a {
	case AccountWallet, AccountBank, AccountStash:
		return true
	}
	return false
}

// Balances holds WTC across wallet, bank and stash. None of them ever goes negative.
type Balances struct {
	Wallet int64 `json:"wallet"`
	Bank   int64 `json:"bank"`
	Stash  int64 `json:"stash"`
}

func (b *Balances) Get(a Account) int64 {
	switch a {
	case AccountWallet:
		return b.Wallet
	case AccountBank:
		return b.Bank
	case AccountStash:
		return b.Stash
	}
	return 0
}

func (b *Balances) set(a Account, v int64) {
	switch a {
	case AccountWallet:
		b.Wallet = v
	case AccountBank:
		b.Bank = v
	case AccountStash:
		b.Stash = v
	}
}

// Total is the sum of all three balances.
func (b Balances) Total() int64 {
	return b.Wallet + b.Bank + b.Stash
}

// Transfer moves a whole amount from one account to another and returns what moved.
// Non-positive and non-finite amounts move nothing. The amount is floored and
// clamped to the source balance.
func Transfer(b *Balances, amount float64, from, to Account) int64 {
	if b == nil || from == to || !from.Valid() || !to.Valid() {
		return 0
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0
	}
	available := b.Get(from)
	if available <= 0 {
		return 0
	}

	whole := math.Floor(amount)
	moved := available
	if whole < float64(available) {
		moved = int64(whole)
	}
	if moved <= 0 {
		return 0
	}

	b.set(from, available-moved)
	b.set(to, b.Get(to)+moved)
	return moved
}

func Deposit(b *Balances, amount float64) int64 {
	return Transfer(b, amount, AccountWallet, AccountBank)
}

func Withdraw(b *Balances, amount float64) int64 {
	return Transfer(b, amount, AccountBank, AccountWallet)
}

func Stash(b *Balances, amount float64) int64 {
	return Transfer(b, amount, AccountWallet, AccountStash)
}

func Unstash(b *Balances, amount float64) int64 {
	return Transfer(b, amount, AccountStash, AccountWallet)
}

// Earn adds a positive amount to the wallet.
func (b *Balances) Earn(amount int64) {
	if amount <= 0 {
		return
	}
	b.Wallet += amount
}

// Spend removes amount from the wallet only when all of it is available.
func (b *Balances) Spend(amount int64) bool {
	if amount <= 0 {
		return true
	}
	if b.Wallet < amount {
		return false
	}
	b.Wallet -= amount
	return true
}

// Fine takes up to amount from the wallet and reports how much was taken.
func (b *Balances) Fine(amount int64) int64 {
	if amount <= 0 || b.Wallet <= 0 {
		return 0
	}
	if amount > b.Wallet {
		amount = b.Wallet
	}
	b.Wallet -= amount
	return amount
}

func (b Balances) String() string {
	return fmt.Sprintf("wallet=%d bank=%d stash=%d", b.Wallet, b.Bank, b.Stash)
}
