package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// InvoiceIssuedTotal counts ticket invoice issuance outcomes by source.
	InvoiceIssuedTotal *prometheus.CounterVec
	// InvoiceVoidedTotal counts invoice void outcomes.
	InvoiceVoidedTotal *prometheus.CounterVec
	// DepositDeductionTotal counts deposit deduction attempts against invoices.
	DepositDeductionTotal *prometheus.CounterVec
	// ReceiptRecordedTotal counts cash receipt recordings.
	ReceiptRecordedTotal *prometheus.CounterVec
	// PINGateTotal counts transaction PIN verification outcomes.
	PINGateTotal *prometheus.CounterVec
	// PDFRenderSeconds records invoice PDF render latency.
	PDFRenderSeconds prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		InvoiceIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_issued_total",
			Help:      "Count of ticket invoice issuance outcomes.",
		}, []string{"source", "result"})
		InvoiceVoidedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_voided_total",
			Help:      "Count of invoice void outcomes.",
		}, []string{"result"})
		DepositDeductionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposit_deduction_total",
			Help:      "Count of deposit deduction attempts by outcome.",
		}, []string{"result"})
		ReceiptRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_recorded_total",
			Help:      "Count of recorded cash receipts by method.",
		}, []string{"method", "result"})
		PINGateTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pin_gate_total",
			Help:      "Count of transaction PIN verification outcomes.",
		}, []string{"result"})
		PDFRenderSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_pdf_render_seconds",
			Help:      "Latency of invoice PDF rendering.",
			Buckets:   prometheus.DefBuckets,
		})

		reg.MustRegister(InvoiceIssuedTotal, InvoiceVoidedTotal, DepositDeductionTotal,
			ReceiptRecordedTotal, PINGateTotal, PDFRenderSeconds)
	})
}
