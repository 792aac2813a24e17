package simfin

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/seenimoa/finchat/pkg/models"
	"github.com/seenimoa/finchat/pkg/utils"
)

// decodeCompact parses a compact response keeping numbers as json.Number so
// large integers are formatted without float rounding.
func decodeCompact(body []byte) ([]compactCompany, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var out []compactCompany
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode compact response: %w", err)
	}
	return out, nil
}

// firstRecord maps the header row onto the first data row. It returns
// ok=false when the payload carries no rows at all.
func firstRecord(companies []compactCompany) (models.StatementRecord, bool, error) {
	if len(companies) == 0 || len(companies[0].Statements) == 0 {
		return nil, false, nil
	}
	stmt := companies[0].Statements[0]
	if len(stmt.Data) == 0 {
		return nil, false, nil
	}
	row := stmt.Data[0]
	if len(row) < len(stmt.Columns) {
		return nil, false, fmt.Errorf("data row has %d values for %d columns", len(row), len(stmt.Columns))
	}

	record := make(models.StatementRecord, len(stmt.Columns))
	for i, col := range stmt.Columns {
		record[col] = row[i]
	}
	return record, true, nil
}

// buildSummary projects a record onto the statement's category table.
// Declared columns the provider did not send render as "N/A". A non-empty
// currency prefix is applied to monetary fields only.
func buildSummary(st models.StatementType, record models.StatementRecord, currency string) *models.Summary {
	summary := models.NewSummary(st)
	for _, group := range layouts[st] {
		for _, field := range group.Fields {
			value, ok := record[field]
			if !ok {
				log.Warn().
					Str("statement", string(st)).
					Str("field", field).
					Msg("simfin: declared column missing from response header")
			}
			if currency != "" && monetary(st, group.Category, field) {
				summary.Add(group.Category, field, utils.FormatCurrency(value, currency))
				continue
			}
			summary.Add(group.Category, field, utils.FormatGrouped(value))
		}
	}
	return summary
}
