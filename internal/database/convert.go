package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgNullUUID(id uuid.NullUUID) pgtype.UUID {
	if !id.Valid {
		return pgtype.UUID{Valid: false}
	}
	return pgUUID(id.UUID)
}

func fromPgUUID(u pgtype.UUID) uuid.UUID {
	if !u.Valid {
		return uuid.Nil
	}
	return uuid.UUID(u.Bytes)
}

func fromPgNullUUID(u pgtype.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(u.Bytes), Valid: u.Valid}
}

func pgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// pgNumeric converts d through its exact string form.
func pgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("convert price %s: %w", d, err)
	}
	return n, nil
}

// fromPgNumeric returns zero for NULL.
func fromPgNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, fmt.Errorf("price is not a finite number")
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
