package auth

// Credential is the single username/password pair the service accepts.
// Values are opaque: no trimming or case folding is applied.
type Credential struct {
	Username string
	Password string
}

// Matches reports whether username and password both equal the credential.
// Both fields are always compared so timing does not reveal which one failed.
func (c Credential) Matches(username, password string) bool {
	userOK := constantTimeEqual(username, c.Username)
	passOK := constantTimeEqual(password, c.Password)
	return userOK && passOK
}

// Authenticate returns ErrInvalidCredentials unless the pair matches cred.
func Authenticate(cred Credential, username, password string) error {
	if !cred.Matches(username, password) {
		return ErrInvalidCredentials
	}
	return nil
}

// Tokens is the login response payload. Access and refresh tokens carry the
// same static value.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IssueTokens returns the login payload for token.
func IssueTokens(token string) Tokens {
	return Tokens{AccessToken: token, RefreshToken: token}
}
