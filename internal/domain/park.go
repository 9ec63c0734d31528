package domain

import (
	"encoding/json"
	"fmt"
)

// Park is an opaque catalog entry. Only ID and Name are inspected (they form the
// embedding input text); Payload carries the full listing record untouched so the
// chat context sees whatever fields the catalog publishes.
type Park struct {
	ID      string
	Name    string
	Payload json.RawMessage
}

// EmbeddingText returns the text vectorized for this park.
func (p Park) EmbeddingText() string {
	return p.Name + " " + p.ID
}

// UnmarshalJSON keeps the raw listing record as the payload while extracting the
// id and name. The id may arrive as a JSON string or number.
func (p *Park) UnmarshalJSON(data []byte) error {
	var head struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("decode park: %w", err)
	}

	p.ID = head.ID.String()
	p.Name = head.Name
	p.Payload = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON serializes the original catalog payload verbatim.
func (p Park) MarshalJSON() ([]byte, error) {
	if len(p.Payload) > 0 {
		return p.Payload, nil
	}
	return json.Marshal(struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}{p.ID, p.Name})
}

// ParkEmbedding pairs a park with its embedding vector. Built fresh on every
// request; never cached across requests.
type ParkEmbedding struct {
	Park      Park
	Embedding []float32
}

// Match is a ranked park with its cosine similarity to the query, ephemeral
// per-request output of the ranker.
type Match struct {
	Park       Park
	Similarity float64
}
