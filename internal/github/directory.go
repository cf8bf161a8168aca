package github

import (
	"context"
	"fmt"
)

// Organizations lists the organizations visible to the authenticated
// user. An empty result is returned as-is; callers decide whether that
// is a problem.
func (c *Client) Organizations(ctx context.Context) ([]Organization, error) {
	var orgs []Organization
	if err := c.get(ctx, "/user/orgs", &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Members lists the public members of an organization.
func (c *Client) Members(ctx context.Context, org Organization) ([]Member, error) {
	var members []Member
	path := fmt.Sprintf("/orgs/%s/members", org.Login)
	if err := c.get(ctx, path, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Repositories lists an organization's repositories. Only the first page
// is fetched; organizations with more repositories than the configured
// page size are partially visible, which is acceptable for sampling.
func (c *Client) Repositories(ctx context.Context, org Organization) ([]Repository, error) {
	var repos []Repository
	path := fmt.Sprintf("/orgs/%s/repos?per_page=%d", org.Login, c.pageSize)
	if err := c.get(ctx, path, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}
