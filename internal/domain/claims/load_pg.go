package claims

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
)

type copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// decoderSource adapts a CSVDecoder to pgx.CopyFromSource so a file streams
// into the table without being held in memory.
type decoderSource struct {
	dec  *CSVDecoder
	cur  Claim
	err  error
	done bool
}

func (s *decoderSource) Next() bool {
	if s.done {
		return false
	}
	c, err := s.dec.Next()
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return false
	}
	s.cur = c
	return true
}

func (s *decoderSource) Values() ([]any, error) {
	return claimValues(&s.cur), nil
}

func (s *decoderSource) Err() error { return s.err }

func claimValues(c *Claim) []any {
	return []any{
		c.ClaimID, c.PatientID, c.PayerType, c.PayerPlan, c.ProviderNPI,
		c.ServiceDate, c.ClaimReceivedDate, c.ClaimProcessedDate,
		c.CPTHCPCSCode, c.ICD10Code,
		c.BilledAmount, c.AllowedAmount, c.PaidAmount,
		c.ClaimStatus, c.DenialReason, c.AdjustmentCode,
	}
}

// CopyCSV streams every claim decoded from dec into the claims table using
// the COPY protocol and returns the number of rows written.
func CopyCSV(ctx context.Context, db copier, dec *CSVDecoder) (int64, error) {
	n, err := db.CopyFrom(ctx, pgx.Identifier{claimsTable}, CSVHeader, &decoderSource{dec: dec})
	if err != nil {
		return n, fmt.Errorf("copy claims: %w", err)
	}
	return n, nil
}

// CopyClaims writes claims into the claims table using the COPY protocol.
func CopyClaims(ctx context.Context, db copier, rows []Claim) (int64, error) {
	n, err := db.CopyFrom(ctx, pgx.Identifier{claimsTable}, CSVHeader,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return claimValues(&rows[i]), nil
		}))
	if err != nil {
		return n, fmt.Errorf("copy claims: %w", err)
	}
	return n, nil
}
