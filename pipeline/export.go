package pipeline

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/go-bargains/models"
)

// DefaultBatchSize is used by Export when batchSize is not positive.
const DefaultBatchSize = 64

// NewWriter builds the writer for format ("csv", "json" or "dual"). In dual
// mode the JSONL file sits next to filename with a .jsonl extension.
func NewWriter(format, filename string) (OutputWriter, error) {
	switch strings.ToLower(format) {
	case "csv":
		return NewCSVWriter(filename)
	case "json":
		return NewJSONWriter(filename)
	case "dual":
		return NewDualWriter(filename, strings.TrimSuffix(filename, ".csv")+".jsonl")
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Export writes products to w in order, batchSize records per Write call.
// It returns the number of products written.
func Export(w OutputWriter, products []models.Product, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	written := 0
	for start := 0; start < len(products); start += batchSize {
		end := min(start+batchSize, len(products))
		if err := w.Write(products[start:end]); err != nil {
			return written, fmt.Errorf("write batch: %w", err)
		}
		written = end
	}
	return written, nil
}
