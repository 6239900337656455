package supabase

import "golang.org/x/oauth2"

const codeChallengeMethod = "s256"

// pkcePair returns a fresh verifier and its S256 challenge.
func pkcePair() (verifier, challenge string) {
	verifier = oauth2.GenerateVerifier()
	return verifier, oauth2.S256ChallengeFromVerifier(verifier)
}

// newChallenge returns an empty pair for the implicit flow.
func (c *Client) newChallenge() (verifier, challenge string) {
	if c.cfg.FlowType != FlowPKCE {
		return "", ""
	}
	return pkcePair()
}
