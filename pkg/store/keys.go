package store

import "time"

// Single-table key schema. Every record carries the base table key pair
// plus the key pairs of whichever secondary indexes it participates in.
const (
	AttrPK = "PK"
	AttrSK = "SK"

	AttrGSI1PK = "GSI1PK"
	AttrGSI1SK = "GSI1SK"
	AttrGSI2PK = "GSI2PK"
	AttrGSI2SK = "GSI2SK"
	AttrGSI3PK = "GSI3PK"
	AttrGSI3SK = "GSI3SK"

	// IndexByProperty groups investments and transactions under the
	// property they belong to.
	IndexByProperty = "GSI1"
	// IndexByStatus groups records by lifecycle status, time-ordered.
	IndexByStatus = "GSI2"
	// IndexByType groups transactions by movement type, time-ordered.
	IndexByType = "GSI3"
)

// Key prefixes and sentinels.
const (
	PropertyKeyPrefix    = "PROPERTY#"
	UserKeyPrefix        = "USER#"
	InvestmentKeyPrefix  = "INVESTMENT#"
	TransactionKeyPrefix = "TRANSACTION#"
	StatusKeyPrefix      = "STATUS#"
	TxTypeKeyPrefix      = "TXTYPE#"

	// PropertyMetadataSK is the fixed sort key of a property record.
	PropertyMetadataSK = "METADATA"
)

// PropertyPK builds the partition key of a property record.
func PropertyPK(propertyID string) string {
	return PropertyKeyPrefix + propertyID
}

// UserPK builds the partition key of a user's ledger records.
func UserPK(userID string) string {
	return UserKeyPrefix + userID
}

// InvestmentSK builds the sort key of an investment record.
func InvestmentSK(investmentID string) string {
	return InvestmentKeyPrefix + investmentID
}

// TransactionSK builds the sort key of a transaction record. The creation
// time leads so that a user's transactions sort in time order and can be
// read most-recent-first.
func TransactionSK(createdAt time.Time, transactionID string) string {
	return TransactionKeyPrefix + createdAt.UTC().Format(time.RFC3339Nano) + "#" + transactionID
}

// StatusPK builds the partition key of the by-status index.
func StatusPK(status string) string {
	return StatusKeyPrefix + status
}

// TxTypePK builds the partition key of the by-type index.
func TxTypePK(txType string) string {
	return TxTypeKeyPrefix + txType
}

// TimeSK renders a timestamp as a time-ordered index sort key.
func TimeSK(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// IndexKeyAttrs returns the (partition, sort) attribute names of the base
// table or one of its indexes.
func IndexKeyAttrs(index string) (string, string) {
	switch index {
	case IndexByProperty:
		return AttrGSI1PK, AttrGSI1SK
	case IndexByStatus:
		return AttrGSI2PK, AttrGSI2SK
	case IndexByType:
		return AttrGSI3PK, AttrGSI3SK
	default:
		return AttrPK, AttrSK
	}
}
