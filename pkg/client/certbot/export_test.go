package certbot

// SetLookPath replaces the PATH probe for testing.
func (c *Client) SetLookPath(lookPath func(file string) (string, error)) {
	c.lookPath = lookPath
}

// SetHookDir redirects deploy hook installation for testing.
func (c *Client) SetHookDir(dir string) {
	c.hookDir = dir
}
