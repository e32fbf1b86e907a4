package rentalapi

import (
	"context"
	"fmt"

	"booking_snapshots/internal/domain"
)

// ListingClient serves property versions from the listing service.
type ListingClient struct{ c *Client }

func NewListingClient(base, token string, rps int, opts ...Option) (*ListingClient, error) {
	c, err := New("listing", base, token, rps, opts...)
	if err != nil {
		return nil, err
	}
	return &ListingClient{c: c}, nil
}

// FetchVersion tries the direct route first, then the gateway-prefixed one.
func (l *ListingClient) FetchVersion(ctx context.Context, versionID int64) (domain.PropertyVersion, error) {
	paths := []string{
		fmt.Sprintf("/property-versions/%d", versionID),
		fmt.Sprintf("/listings/property-versions/%d", versionID),
	}
	var v domain.PropertyVersion
	if err := l.c.getFirst(ctx, "property-version", paths, &v); err != nil {
		return domain.PropertyVersion{}, err
	}
	return v, nil
}
