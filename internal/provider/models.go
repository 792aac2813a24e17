package provider

import "github.com/seenimoa/finchat/pkg/models"

// ModelType represents a standard data model a fetcher can produce.
type ModelType string

const (
	ModelBalanceSheet      ModelType = "BalanceSheet"
	ModelCashFlowStatement ModelType = "CashFlowStatement"
	ModelIncomeStatement   ModelType = "IncomeStatement"
	ModelDerivedMetrics    ModelType = "DerivedMetrics"
)

// AllModels returns every model type in statement display order.
func AllModels() []ModelType {
	out := make([]ModelType, 0, 4)
	for _, st := range models.AllStatements() {
		out = append(out, ModelFor(st))
	}
	return out
}

// ModelFor maps a statement type to its model type.
func ModelFor(st models.StatementType) ModelType {
	switch st {
	case models.StatementBalanceSheet:
		return ModelBalanceSheet
	case models.StatementCashFlow:
		return ModelCashFlowStatement
	case models.StatementProfitLoss:
		return ModelIncomeStatement
	case models.StatementDerived:
		return ModelDerivedMetrics
	}
	return ModelType(st)
}

// Statement maps a model type back to its statement type.
func (m ModelType) Statement() models.StatementType {
	switch m {
	case ModelBalanceSheet:
		return models.StatementBalanceSheet
	case ModelCashFlowStatement:
		return models.StatementCashFlow
	case ModelIncomeStatement:
		return models.StatementProfitLoss
	case ModelDerivedMetrics:
		return models.StatementDerived
	}
	return models.StatementType(m)
}
