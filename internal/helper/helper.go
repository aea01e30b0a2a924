package helper

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompareDecimal128 compares two primitive.Decimal128 values.
// It returns:
// -1 if d1 < d2
// 0 if d1 == d2
// 1 if d1 > d2
// An error if conversion to BigFloat fails.
func CompareDecimal128(d1, d2 primitive.Decimal128) (int, error) {
	f1, _, err := new(big.Float).Parse(d1.String(), 10)
	if err != nil {
		return 0, fmt.Errorf("failed to convert d1 to big.Float: %w", err)
	}
	f2, _, err := new(big.Float).Parse(d2.String(), 10)
	if err != nil {
		return 0, fmt.Errorf("failed to convert d2 to big.Float: %w", err)
	}
	return f1.Cmp(f2), nil
}

// AddDecimal128 adds two primitive.Decimal128 values (d1 + d2).
// It returns the result as a primitive.Decimal128.
func AddDecimal128(d1, d2 primitive.Decimal128) (primitive.Decimal128, error) {
	f1, _, err := new(big.Float).SetPrec(big.MaxPrec).Parse(d1.String(), 10)
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert d1 to big.Float: %w", err)
	}
	f2, _, err := new(big.Float).SetPrec(big.MaxPrec).Parse(d2.String(), 10)
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert d2 to big.Float: %w", err)
	}

	resultFloat := new(big.Float).Add(f1, f2)

	resultDecimal, err := primitive.ParseDecimal128(resultFloat.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert result to Decimal128: %w", err)
	}

	return resultDecimal, nil
}

// MulDecimal128ByUint multiplies a Decimal128 price by an integer quantity.
func MulDecimal128ByUint(d primitive.Decimal128, n uint32) (primitive.Decimal128, error) {
	f, _, err := new(big.Float).SetPrec(big.MaxPrec).Parse(d.String(), 10)
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert d to big.Float: %w", err)
	}

	resultFloat := new(big.Float).Mul(f, new(big.Float).SetUint64(uint64(n)))

	resultDecimal, err := primitive.ParseDecimal128(resultFloat.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert result to Decimal128: %w", err)
	}

	return resultDecimal, nil
}

// Decimal128ToFloat64 converts a primitive.Decimal128 to a float64.
// It returns an error if the underlying string conversion fails.
func Decimal128ToFloat64(d primitive.Decimal128) (float64, error) {
	return strconv.ParseFloat(d.String(), 64)
}

func ConvertStringsToObjectID(s []string) ([]primitive.ObjectID, error) {
	if len(s) == 0 {
		return nil, errors.New("empty slice")
	}

	ss := make([]primitive.ObjectID, 0, len(s))

	for _, v := range s {
		oid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return nil, errors.New("include invalid string")
		}
		ss = append(ss, oid)
	}

	return ss, nil
}
