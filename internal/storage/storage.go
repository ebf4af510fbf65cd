package storage

import "poolVault/internal/model"

// QuoteSink is a destination for computed quote records.
type QuoteSink interface {
	PutQuoteBatch(quotes []model.QuoteRecord) error
}
