package adapter

import (
	"encoding/json"
)

// JSON abstracts encoding so tests can inject marshal/unmarshal failures
// that are otherwise hard to provoke with well-formed gateway payloads.
//
//go:generate mockgen -source=json.go -destination=../mocks/json.go -package=mocks -mock_names=JSON=MockJSON
type JSON interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// RealJSON is the encoding/json-backed implementation used outside tests.
type RealJSON struct{}

// NewJSON returns the production JSON codec.
func NewJSON() JSON {
	return &RealJSON{}
}

func (j *RealJSON) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (j *RealJSON) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
