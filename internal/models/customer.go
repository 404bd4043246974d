package models

// CreditStatus is the credit standing of a customer as maintained by the
// customer service. Orders cannot be taken for blocked customers.
type CreditStatus string

const (
	CreditStatusOK      CreditStatus = "ok"
	CreditStatusHold    CreditStatus = "hold"
	CreditStatusBlocked CreditStatus = "blocked"
)

// Customer is the slice of the customer master this service consumes: the
// negotiated 44-inch benchmark rate and the credit gate.
type Customer struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	BenchmarkRate44 float64      `json:"benchmark_rate_44"`
	CreditStatus    CreditStatus `json:"credit_status"`
	CreditLimit     float64      `json:"credit_limit"`
	OutstandingDue  float64      `json:"outstanding_due"`
}

// CanOrder reports whether new orders may be taken for this customer.
func (c *Customer) CanOrder() bool {
	return c.CreditStatus != CreditStatusBlocked
}
