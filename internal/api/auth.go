package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload; AvatarPath optionally points at an
// image file uploaded as multipart.
type Registration struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
	AvatarPath           string
}

// Login authenticates and persists the returned session.
func (c *Client) Login(ctx context.Context, creds Credentials) (*domain.Session, error) {
	var body json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/login", creds, &body); err != nil {
		return nil, err
	}
	return c.storeSession(ctx, body)
}

// Register creates an account and persists the returned session. The avatar,
// when present, rides along as a multipart file field.
func (c *Client) Register(ctx context.Context, reg Registration) (*domain.Session, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"username":              reg.Username,
		"email":                 reg.Email,
		"password":              reg.Password,
		"password_confirmation": reg.PasswordConfirmation,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
	}
	if reg.AvatarPath != "" {
		if err := attachFile(w, "avatar", reg.AvatarPath); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/register", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var body json.RawMessage
	if err := c.roundTrip(req, &body); err != nil {
		return nil, err
	}
	return c.storeSession(ctx, body)
}

// Logout drops the persisted session. The API has no logout endpoint; the
// bearer token is simply forgotten.
func (c *Client) Logout(ctx context.Context) error {
	return c.state.ClearSession(ctx)
}

func attachFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()
	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	return nil
}

// storeSession probes the auth payload for the token and user, tolerating a
// data wrapper and the access_token variant, then persists the session.
func (c *Client) storeSession(ctx context.Context, body json.RawMessage) (*domain.Session, error) {
	type authPayload struct {
		Token       string       `json:"token"`
		AccessToken string       `json:"access_token"`
		User        *domain.User `json:"user"`
	}
	var payload struct {
		authPayload
		Data *authPayload `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}

	p := payload.authPayload
	if p.Token == "" && p.AccessToken == "" && payload.Data != nil {
		p = *payload.Data
	}
	token := p.Token
	if token == "" {
		token = p.AccessToken
	}
	if token == "" {
		return nil, &Error{Status: http.StatusOK, Message: "auth response carried no token"}
	}

	session := &domain.Session{Token: token}
	if p.User != nil {
		session.User = *p.User
	}
	if err := c.state.SetSession(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}
