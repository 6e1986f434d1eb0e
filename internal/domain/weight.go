package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Weight is a prescribed load. It is stored as a BSON Decimal128 so no
// precision is lost between the API and the database.
type Weight struct {
	decimal.Decimal
}

func NewWeight(d decimal.Decimal) *Weight {
	return &Weight{Decimal: d}
}

// WeightFromFloat is a convenience for tests and fixtures.
func WeightFromFloat(f float64) *Weight {
	return &Weight{Decimal: decimal.NewFromFloat(f)}
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (w Weight) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(w.Decimal.String())
	if err != nil {
		return 0, nil, fmt.Errorf("weight %s: %w", w.Decimal.String(), err)
	}
	return bson.MarshalValue(d)
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (w *Weight) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var d primitive.Decimal128
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&d); err != nil {
		return err
	}
	parsed, err := decimal.NewFromString(d.String())
	if err != nil {
		return fmt.Errorf("weight %s: %w", d.String(), err)
	}
	w.Decimal = parsed
	return nil
}

// MarshalJSON writes the weight as a bare JSON number.
func (w Weight) MarshalJSON() ([]byte, error) {
	return []byte(w.Decimal.String()), nil
}
