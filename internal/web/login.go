package web

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"configgate/internal/auth"
	"configgate/internal/metrics"
)

type loginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, err := readLogin(w, r)
	if err != nil {
		metrics.ObserveLogin(metrics.LoginMalformed)
		s.Logger.Debug("login rejected", "reason", err)
		writeEmpty(w, auth.StatusFor(err))
		return
	}
	if err := auth.Authenticate(s.settings.Credential(), username, password); err != nil {
		metrics.ObserveLogin(metrics.LoginRejected)
		s.Logger.Info("login rejected", "reason", err)
		writeEmpty(w, auth.StatusFor(err))
		return
	}
	metrics.ObserveLogin(metrics.LoginSuccess)
	writeJSON(w, http.StatusOK, auth.IssueTokens(s.settings.Token()))
}

// readLogin extracts username and password from a form-encoded body, or a
// JSON body when the request says so. Both fields must be present.
func readLogin(w http.ResponseWriter, r *http.Request) (string, string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		return "", "", fmt.Errorf("%w: read body: %v", auth.ErrMalformedRequest, err)
	}
	if isJSON(r.Header.Get("Content-Type")) {
		return decodeJSONLogin(body)
	}
	return decodeFormLogin(body)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

func decodeFormLogin(body []byte) (string, string, error) {
	form := parseForm(string(body))
	username, ok := formValue(form, "username")
	if !ok {
		return "", "", fmt.Errorf("%w: username missing", auth.ErrMalformedRequest)
	}
	password, ok := formValue(form, "password")
	if !ok {
		return "", "", fmt.Errorf("%w: password missing", auth.ErrMalformedRequest)
	}
	return username, password, nil
}

// parseForm splits a urlencoded body on '&' only. A raw ';' stays part of
// the value and an invalid escape is kept literally, so such values reach
// the credential check instead of failing the whole body.
func parseForm(body string) url.Values {
	form := url.Values{}
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		form.Add(unescapeForm(key), unescapeForm(value))
	}
	return form
}

func unescapeForm(s string) string {
	if !strings.ContainsAny(s, "+%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s):
			if v, err := hex.DecodeString(s[i+1 : i+3]); err == nil {
				b.WriteByte(v[0])
				i += 2
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func formValue(form url.Values, key string) (string, bool) {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func decodeJSONLogin(body []byte) (string, string, error) {
	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", "", fmt.Errorf("%w: %v", auth.ErrMalformedRequest, err)
	}
	if req.Username == nil || req.Password == nil {
		return "", "", fmt.Errorf("%w: username and password required", auth.ErrMalformedRequest)
	}
	return *req.Username, *req.Password, nil
}
