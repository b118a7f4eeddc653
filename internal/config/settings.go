package config

import (
	"io"

	"configgate/internal/auth"
)

// Settings holds the credential, token and config artifact for the life of
// the process. It has no setters; the artifact is copied in and out so no
// caller can alias the stored bytes.
type Settings struct {
	credential auth.Credential
	token      string
	artifact   []byte
}

func NewSettings(cred auth.Credential, token string, artifact []byte) Settings {
	return Settings{
		credential: cred,
		token:      token,
		artifact:   append([]byte(nil), artifact...),
	}
}

func (s Settings) Credential() auth.Credential { return s.credential }

func (s Settings) Token() string { return s.token }

func (s Settings) Artifact() []byte { return append([]byte(nil), s.artifact...) }

func (s Settings) ArtifactSize() int { return len(s.artifact) }

// WriteArtifact writes the artifact to w without copying it.
func (s Settings) WriteArtifact(w io.Writer) (int, error) {
	return w.Write(s.artifact)
}
