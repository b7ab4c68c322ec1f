// Package crpt submits marked-goods documents to the CRPT API, gated by a
// caller-chosen rate limiter.
package crpt

// Description carries the participant identifier of a submission.
type Description struct {
	ParticipantInn string `json:"participantInn,omitempty"`
}

// Product is one item of a submission. Field names mirror the external API
// schema and must not change.
type Product struct {
	CertificateDocument       string `json:"certificate_document,omitempty"`
	CertificateDocumentDate   string `json:"certificate_document_date,omitempty"`
	CertificateDocumentNumber string `json:"certificate_document_number,omitempty"`
	OwnerInn                  string `json:"owner_inn,omitempty"`
	ProducerInn               string `json:"producer_inn,omitempty"`
	ProductionDate            string `json:"production_date,omitempty"`
	TnvedCode                 string `json:"tnved_code,omitempty"`
	UitCode                   string `json:"uit_code,omitempty"`
	UituCode                  string `json:"uitu_code,omitempty"`
}

// Document is a goods-introduction document in the shape the external API
// expects. Unset optional fields are omitted from the wire payload;
// importRequest is always emitted.
type Document struct {
	Description    *Description `json:"description,omitempty"`
	DocID          string       `json:"doc_id,omitempty"`
	DocStatus      string       `json:"doc_status,omitempty"`
	DocType        string       `json:"doc_type,omitempty"`
	ImportRequest  bool         `json:"importRequest"`
	OwnerInn       string       `json:"owner_inn,omitempty"`
	ParticipantInn string       `json:"participant_inn,omitempty"`
	ProducerInn    string       `json:"producer_inn,omitempty"`
	ProductionDate string       `json:"production_date,omitempty"`
	ProductionType string       `json:"production_type,omitempty"`
	Products       []Product    `json:"products,omitempty"`
	RegDate        string       `json:"reg_date,omitempty"`
	RegNumber      string       `json:"reg_number,omitempty"`
}

// APIResponse is the outcome of one submission. Non-2xx statuses are normal
// responses, not errors.
type APIResponse struct {
	StatusCode int
	Body       string
}

// IsSuccess reports whether the status code is in [200, 300).
func (r APIResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
