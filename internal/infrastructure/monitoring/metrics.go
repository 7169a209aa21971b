package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type BusinessMetrics struct {
	CustomersRegisteredTotal prometheus.Counter
	EvaluationsTotal         *prometheus.CounterVec
	LoansCreatedTotal        prometheus.Counter
	IngestionRowsTotal       *prometheus.CounterVec
	IngestionRunsTotal       *prometheus.CounterVec
}

var Business = BusinessMetrics{
	CustomersRegisteredTotal: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credit_engine_customers_registered_total",
			Help: "Total number of customers registered.",
		},
	),
	EvaluationsTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_engine_eligibility_evaluations_total",
			Help: "Total number of eligibility evaluations by outcome.",
		},
		[]string{"outcome"},
	),
	LoansCreatedTotal: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credit_engine_loans_created_total",
			Help: "Total number of loans created after approval.",
		},
	),
	IngestionRowsTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_engine_ingestion_rows_total",
			Help: "Total number of ingested spreadsheet rows by entity and status.",
		},
		[]string{"entity", "status"},
	),
	IngestionRunsTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_engine_ingestion_runs_total",
			Help: "Total number of ingestion job runs by status.",
		},
		[]string{"status"},
	),
}

func RecordCustomerRegistered() {
	Business.CustomersRegisteredTotal.Inc()
}

func RecordEvaluation(outcome string) {
	Business.EvaluationsTotal.WithLabelValues(outcome).Inc()
}

func RecordLoanCreated() {
	Business.LoansCreatedTotal.Inc()
}

func RecordIngestionRow(entity, status string) {
	Business.IngestionRowsTotal.WithLabelValues(entity, status).Inc()
}

func RecordIngestionRun(status string) {
	Business.IngestionRunsTotal.WithLabelValues(status).Inc()
}
