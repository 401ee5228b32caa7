package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DatasetName identifies one of the aggregate payloads embedded in a page.
type DatasetName string

const (
	DatasetTransactions     DatasetName = "transactions"
	DatasetMonthlySummary   DatasetName = "monthly-summary"
	DatasetExpenseBreakdown DatasetName = "expense-breakdown"
	DatasetCashFlow         DatasetName = "cash-flow"
	DatasetDailySummary     DatasetName = "daily-summary"

	// DatasetPage names the page as a whole when it cannot be read at all.
	DatasetPage DatasetName = "page"
)

// AggregateDatasets lists the four chart datasets in page order.
var AggregateDatasets = []DatasetName{
	DatasetMonthlySummary,
	DatasetExpenseBreakdown,
	DatasetCashFlow,
	DatasetDailySummary,
}

// ElementID is the id of the script tag carrying the dataset in the rendered page.
func (n DatasetName) ElementID() string {
	return string(n) + "-data"
}

// PeriodTotals is the income/expense pair of one period.
type PeriodTotals struct {
	Period  string  `json:"period"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// CategoryAmount is the summed expense of one category.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// PeriodValue is a signed value of one period.
type PeriodValue struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// The aggregate datasets keep the key order of the payload object.
type (
	// MonthlySummary maps YYYY-MM to income/expense totals.
	MonthlySummary []PeriodTotals
	// ExpenseBreakdown maps a category label to its summed expense.
	ExpenseBreakdown []CategoryAmount
	// CashFlow maps YYYY-MM to income minus expense.
	CashFlow []PeriodValue
	// DailySummary maps YYYY-MM-DD to income/expense totals.
	DailySummary []PeriodTotals
)

type totalsWire struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

func (m *MonthlySummary) UnmarshalJSON(data []byte) error {
	out, err := decodeTotals(data)
	if err != nil {
		return err
	}
	*m = out
	return nil
}

func (m MonthlySummary) MarshalJSON() ([]byte, error) {
	return encodeTotals(m)
}

func (d *DailySummary) UnmarshalJSON(data []byte) error {
	out, err := decodeTotals(data)
	if err != nil {
		return err
	}
	*d = out
	return nil
}

func (d DailySummary) MarshalJSON() ([]byte, error) {
	return encodeTotals(d)
}

func (e *ExpenseBreakdown) UnmarshalJSON(data []byte) error {
	out := ExpenseBreakdown{}
	err := walkObject(data, func(key string, raw json.RawMessage) error {
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("category %q: %w", key, err)
		}
		out = append(out, CategoryAmount{Category: key, Amount: v})
		return nil
	})
	if err != nil {
		return err
	}
	*e = out
	return nil
}

func (e ExpenseBreakdown) MarshalJSON() ([]byte, error) {
	return encodeObject(len(e), func(i int) (string, any) {
		return e[i].Category, e[i].Amount
	})
}

func (c *CashFlow) UnmarshalJSON(data []byte) error {
	out := CashFlow{}
	err := walkObject(data, func(key string, raw json.RawMessage) error {
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("period %q: %w", key, err)
		}
		out = append(out, PeriodValue{Period: key, Value: v})
		return nil
	})
	if err != nil {
		return err
	}
	*c = out
	return nil
}

func (c CashFlow) MarshalJSON() ([]byte, error) {
	return encodeObject(len(c), func(i int) (string, any) {
		return c[i].Period, c[i].Value
	})
}

func decodeTotals(data []byte) ([]PeriodTotals, error) {
	out := []PeriodTotals{}
	err := walkObject(data, func(key string, raw json.RawMessage) error {
		var w totalsWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return fmt.Errorf("period %q: %w", key, err)
		}
		out = append(out, PeriodTotals{Period: key, Income: w.Income, Expense: w.Expense})
		return nil
	})
	return out, err
}

func encodeTotals(rows []PeriodTotals) ([]byte, error) {
	return encodeObject(len(rows), func(i int) (string, any) {
		return rows[i].Period, totalsWire{Income: rows[i].Income, Expense: rows[i].Expense}
	})
}

// walkObject visits the members of a JSON object in document order.
func walkObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// encodeObject writes n members as a JSON object, keeping their order.
func encodeObject(n int, member func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, val := member(i)
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
