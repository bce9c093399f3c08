package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mhalvorsen/stockroom/internal/logging"
)

// ImportCSV parses CSV bytes and runs the resulting batch through Import.
func (s *Service) ImportCSV(ctx context.Context, data []byte) (*ImportSummary, error) {
	records, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, records)
}

// Import runs one import batch: every record is validated, checked for
// name collisions, and inserted inside a single transaction. Either every
// accepted row becomes durable or none do.
//
// Records are resolved strictly in file order, one at a time. This is a
// correctness requirement, not an optimization: the duplicate check for a
// row must observe every earlier row's outcome, otherwise two colliding
// rows can both see "no match" and both insert. The first occurrence of a
// normalized name wins; every later row with that name is reported as a
// duplicate of the winner, regardless of field contents.
//
// Validation failures and duplicates only affect counts. A storage error
// aborts the whole batch with no partial state.
func (s *Service) Import(ctx context.Context, records []Record) (*ImportSummary, error) {
	batchID := uuid.New().String()
	logger := logging.FromContext(ctx).With("batch_id", batchID, "rows", len(records))

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import batch: %w", err)
	}
	defer tx.Rollback(ctx)

	summary := &ImportSummary{Duplicates: []DuplicateRecord{}}

	// Normalized names accepted earlier in this batch, mapped to the
	// winner's assigned id. Consulted before the store so batch-local
	// collisions resolve identically on every Store implementation.
	accepted := make(map[string]int64)

	for _, rec := range records {
		row, err := ValidateRecord(rec)
		if err != nil {
			summary.Skipped++
			continue
		}

		norm := NormalizeName(row.Name)

		if winnerID, ok := accepted[norm]; ok {
			summary.Skipped++
			summary.Duplicates = append(summary.Duplicates, DuplicateRecord{Name: row.Name, ExistingID: winnerID})
			continue
		}

		existing, err := tx.FindByName(ctx, norm, 0)
		if err != nil {
			return nil, fmt.Errorf("duplicate check for %q: %w", row.Name, err)
		}
		if existing != nil {
			summary.Skipped++
			summary.Duplicates = append(summary.Duplicates, DuplicateRecord{Name: row.Name, ExistingID: existing.ID})
			continue
		}

		id, err := tx.InsertProduct(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("insert %q: %w", row.Name, err)
		}
		accepted[norm] = id
		summary.Added++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit import batch: %w", err)
	}

	s.flushCache(ctx)

	logger.Info("import batch committed",
		"added", summary.Added,
		"skipped", summary.Skipped,
		"duplicates", len(summary.Duplicates),
	)

	return summary, nil
}
