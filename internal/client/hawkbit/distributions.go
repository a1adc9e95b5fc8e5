package hawkbit

import (
	"context"
	"net/http"

	domain "github.com/foundriesio/hawkbit-publish/internal/domain/hawkbit"
)

// CreateDistributionSet posts the distribution set referencing the module's
// links and returns it with the server-assigned ID.
func (c *Client) CreateDistributionSet(
	ctx context.Context,
	ds *domain.DistributionSet,
	links domain.ModuleLinks,
) (*domain.DistributionSet, error) {
	const op = "create distribution set"

	req, err := jsonRequest(op, http.MethodPost, c.endpoints.DistributionSets,
		[]distributionSetJSON{toDistributionSetJSON(ds, links)}, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var created []distributionSetJSON
	if err = c.doJSON(ctx, req, &created); err != nil {
		return nil, err
	}

	if len(created) == 0 || created[0].ID == 0 {
		return nil, missingField(op, "id")
	}

	result := *ds
	result.ID = created[0].ID
	result.ModuleIDs = append([]int64(nil), ds.ModuleIDs...)

	return &result, nil
}
