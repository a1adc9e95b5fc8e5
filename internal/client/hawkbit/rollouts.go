package hawkbit

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	domain "github.com/foundriesio/hawkbit-publish/internal/domain/hawkbit"
)

// rolloutPageSize is the page size used when listing rollouts.
const rolloutPageSize = 50

// CreateRollout posts the rollout and returns it with the server-assigned ID and start link.
func (c *Client) CreateRollout(ctx context.Context, r *domain.Rollout) (*domain.Rollout, error) {
	const op = "create rollout"

	req, err := jsonRequest(op, http.MethodPost, c.endpoints.Rollouts, toRolloutJSON(r), http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var created rolloutJSON
	if err = c.doJSON(ctx, req, &created); err != nil {
		return nil, err
	}

	if created.ID == 0 {
		return nil, missingField(op, "id")
	}

	rollout := fromRolloutJSON(&created)
	if rollout.StartLink == "" {
		return nil, missingField(op, "_links.start")
	}

	return rollout, nil
}

// StartRollout posts to the rollout's start link.
func (c *Client) StartRollout(ctx context.Context, startLink string) error {
	_, err := c.do(ctx, &request{
		op:       "start rollout",
		method:   http.MethodPost,
		url:      startLink,
		expected: []int{http.StatusOK, http.StatusCreated, http.StatusNoContent},
	})

	return err
}

// GetRolloutProgress reads the per-status target counts of a rollout.
func (c *Client) GetRolloutProgress(ctx context.Context, id int64) (domain.RolloutProgress, error) {
	const op = "poll rollout status"

	target, err := url.JoinPath(c.endpoints.Rollouts, strconv.FormatInt(id, 10))
	if err != nil {
		return domain.RolloutProgress{}, &APIError{Op: op, StatusCode: NoStatus, Message: "build url", Err: err}
	}

	var fetched rolloutJSON

	err = c.doJSON(ctx, &request{
		op:       op,
		method:   http.MethodGet,
		url:      target,
		expected: []int{http.StatusOK},
	}, &fetched)
	if err != nil {
		return domain.RolloutProgress{}, err
	}

	return fromRolloutProgressJSON(&fetched), nil
}

// ListRolloutNames returns the names of rollouts whose name contains marker.
// The server filters with a FIQL wildcard query, pages are fetched until the
// reported total is reached.
func (c *Client) ListRolloutNames(ctx context.Context, marker string) ([]string, error) {
	const op = "list rollouts"

	base, err := url.Parse(c.endpoints.Rollouts)
	if err != nil {
		return nil, &APIError{Op: op, StatusCode: NoStatus, Message: "parse url", Err: err}
	}

	var names []string

	for offset := 0; ; {
		query := base.Query()
		query.Set("offset", strconv.Itoa(offset))
		query.Set("limit", strconv.Itoa(rolloutPageSize))
		query.Set("q", "name==*"+marker+"*")

		pageURL := *base
		pageURL.RawQuery = query.Encode()

		var page pagedRolloutsJSON

		err = c.doJSON(ctx, &request{
			op:       op,
			method:   http.MethodGet,
			url:      pageURL.String(),
			expected: []int{http.StatusOK},
		}, &page)
		if err != nil {
			return nil, err
		}

		for i := range page.Content {
			names = append(names, page.Content[i].Name)
		}

		offset += len(page.Content)
		if len(page.Content) == 0 || offset >= page.Total {
			return names, nil
		}
	}
}
