package repository

import "gorm.io/gorm"

// conn picks the transaction handle when one is given so repository calls can
// take part in a service-level db.Transaction.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// Page is a 1-based pagination request.
type Page struct {
	Page    int
	PerPage int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 || p.PerPage > 200 {
		p.PerPage = 20
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PerPage
}
