package models

import "encoding/json"

// Transaction is a single statement line as returned by the analysis service.
type Transaction struct {
	Date        string  `json:"Date"`
	Description string  `json:"Description"`
	Amount      float64 `json:"Amount"` // signed, negative = expense
	Category    string  `json:"Category"`
	IsAnomaly   bool    `json:"is_anomaly"`
}

// UnmarshalJSON accepts both the service's snake_case anomaly flag and the
// camelCase "isAnomaly" spelling.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	var aux struct {
		plain
		CamelAnomaly *bool `json:"isAnomaly"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Transaction(aux.plain)
	if aux.CamelAnomaly != nil {
		t.IsAnomaly = *aux.CamelAnomaly
	}
	return nil
}

// AnalysisResult is the service's success payload. Anomalies is the subset of
// Transactions flagged by the service and is used as given.
type AnalysisResult struct {
	Insight      string        `json:"insight"`
	Transactions []Transaction `json:"transactions"`
	Anomalies    []Transaction `json:"anomalies"`
}

// UploadedFile is the single file held by the upload form.
type UploadedFile struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Pages       int    `json:"pages,omitempty"` // PDFs only, 0 when unknown
	Data        []byte `json:"-"`
}
