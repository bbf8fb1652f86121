package port

import (
	"context"
	"encoding/json"
)

// ParseInput carries an invoice file for field extraction.
type ParseInput struct {
	FileBytes   []byte
	ContentType string
	FileName    string
}

// ParseOutput holds the extracted invoice fields as loosely typed JSON.
type ParseOutput struct {
	StructuredData json.RawMessage
	ModelUsed      string
	PromptUsed     string
}

// DocumentParser abstracts the third-party extraction API.
type DocumentParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
