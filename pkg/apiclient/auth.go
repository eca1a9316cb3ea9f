package apiclient

// ValidatePassphraseResponse is returned by a successful passphrase check.
type ValidatePassphraseResponse struct {
	Validated bool   `json:"validated"`
	Token     string `json:"token"`
}

// ValidatePassphrase authenticates a principal against ingestd and, on
// success, returns an opaque session token to use for subsequent requests.
func (c *Client) ValidatePassphrase(email, passphrase string) (*ValidatePassphraseResponse, error) {
	req := struct {
		Email      string `json:"email"`
		Passphrase string `json:"passphrase"`
	}{Email: email, Passphrase: passphrase}

	var resp ValidatePassphraseResponse
	if err := c.post("/api/validate-passphrase", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
