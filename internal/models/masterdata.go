package models

import "strings"

// Person is a party that can owe debts and send or receive payments.
// A person is either natural (name/last name) or legal (company name).
type Person struct {
	ID          int64
	Name        string
	LastName    string
	CompanyName string
	IsLegal     bool
}

// DisplayName returns the company name for legal persons, otherwise
// "name last-name".
func (p Person) DisplayName() string {
	if p.IsLegal {
		return strings.TrimSpace(p.CompanyName)
	}
	return strings.TrimSpace(p.Name + " " + p.LastName)
}

// Project scopes debts and transactions. ParentID is 0 for root projects.
type Project struct {
	ID       int64
	Title    string
	ParentID int64
}

// Item is a catalog entry referenced by debt lines.
type Item struct {
	ID    int64
	Title string
}

// Unit is a measurement unit referenced by debt lines.
type Unit struct {
	ID    int64
	Title string
}
