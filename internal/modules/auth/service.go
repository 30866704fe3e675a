package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
)

const loginPath = "login.php"

// Result is what a successful login hands back.
type Result struct {
	Token string
	Name  string
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Service posts credentials to the backend login endpoint.
type Service struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

func NewService(baseURL string, hc *http.Client, log *slog.Logger) *Service {
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{baseURL: strings.TrimRight(baseURL, "/"), http: hc, log: log}
}

// Login returns the token and display name for the given credentials. A
// refusal is reported as *RejectedError; transport problems use the
// resource error types.
func (s *Service) Login(ctx context.Context, email, password string) (Result, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+loginPath, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("login: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		s.log.Warn("login_unreachable", slog.Any("err", err))
		return Result{}, &resource.NetworkError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, &resource.NetworkError{Op: "login", Err: err}
	}

	var out loginResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.Warn("login_bad_response", slog.Int("status", resp.StatusCode))
		return Result{}, &resource.ServerError{Op: "login", Status: resp.StatusCode, Message: resource.GenericMessage}
	}
	if resp.StatusCode >= 500 {
		msg := out.Message
		if msg == "" {
			msg = resource.GenericMessage
		}
		return Result{}, &resource.ServerError{Op: "login", Status: resp.StatusCode, Message: msg}
	}
	if !out.Success || out.Token == "" {
		msg := out.Message
		if msg == "" {
			msg = "Invalid email or password."
		}
		s.log.Info("login_rejected", slog.Int("status", resp.StatusCode))
		return Result{}, &RejectedError{Message: msg}
	}
	return Result{Token: out.Token, Name: out.Name}, nil
}
