package caddy

// AdminBaseURL exposes the resolved base URL for testing.
func (c *Client) AdminBaseURL() string {
	return c.baseURL
}
