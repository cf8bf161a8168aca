package github

import (
	"context"
	"fmt"
)

// Branches lists the branch names of a repository. Listing failures are
// never fatal: some repositories refuse branch listing while still
// serving commits, and one odd repository must not stall the whole
// pipeline. On failure the configured fallback set is assumed and a
// warning is logged.
func (c *Client) Branches(ctx context.Context, repo Repository) []string {
	var branches []Branch
	path := fmt.Sprintf("/repos/%s/branches?per_page=%d", repo.FullName, c.pageSize)
	if err := c.get(ctx, path, &branches); err != nil {
		c.log.Warn("branch listing failed for %s, assuming %v: %v", repo.FullName, c.fallbackBranches, err)
		return append([]string(nil), c.fallbackBranches...)
	}
	if len(branches) == 0 {
		return append([]string(nil), c.fallbackBranches...)
	}
	names := make([]string, 0, len(branches))
	for _, b := range branches {
		names = append(names, b.Name)
	}
	return names
}
