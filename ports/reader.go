package ports

import (
	"context"

	"priorelicit/domain/elicit"
)

// DatasetSource provides read-only access to an elicitation dataset kept outside the
// service: a workbook, a CSV or JSON file, or a remote endpoint. Field names are
// returned in source order.
type DatasetSource interface {
	LoadDataset(ctx context.Context) (elicit.Dataset, []string, error)
}
