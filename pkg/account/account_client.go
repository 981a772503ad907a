package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"farmxchain/domain"
)

type (
	// AccountClient talks to the external user/account backend.
	AccountClient interface {
		Login(ctx context.Context, req domain.LoginRequest) (domain.User, string, error)
		Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error)
		ListUsers(ctx context.Context, token string) ([]domain.User, error)
		DeleteUser(ctx context.Context, token string, id int64) error
		UpdateRole(ctx context.Context, token string, id int64, role string) error
	}

	accountClient struct {
		baseURL    string
		httpClient *http.Client
	}

	loginReply struct {
		User  *domain.User `json:"user"`
		Token string       `json:"token"`
	}

	registerReply struct {
		User    *domain.User `json:"user"`
		Message string       `json:"message"`
	}

	errorReply struct {
		Message string `json:"message"`
	}
)

func NewAccountClient(baseURL string, httpClient *http.Client) AccountClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &accountClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *accountClient) Login(ctx context.Context, req domain.LoginRequest) (domain.User, string, error) {
	var reply loginReply
	if err := c.do(ctx, http.MethodPost, "/login", "", req, &reply); err != nil {
		return domain.User{}, "", err
	}
	if reply.User == nil || reply.Token == "" {
		return domain.User{}, "", fmt.Errorf("%w: invalid login response", domain.ErrAccountBackend)
	}
	return *reply.User, reply.Token, nil
}

func (c *accountClient) Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error) {
	var reply registerReply
	if err := c.do(ctx, http.MethodPost, "/register", "", req, &reply); err != nil {
		return domain.User{}, err
	}
	if reply.User != nil {
		return *reply.User, nil
	}
	return domain.User{Name: req.Name, Email: req.Email, Role: req.Role}, nil
}

func (c *accountClient) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/all-with-passwords", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *accountClient) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/"+strconv.FormatInt(id, 10), token, nil, nil)
}

func (c *accountClient) UpdateRole(ctx context.Context, token string, id int64, role string) error {
	body := domain.UpdateRoleRequest{Role: role}
	return c.do(ctx, http.MethodPut, "/"+strconv.FormatInt(id, 10)+"/role", token, body, nil)
}

// do sends one JSON request. 401 and 403 become domain.ErrAuthorization so
// callers can force a logout; other failures wrap domain.ErrAccountBackend.
func (c *accountClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAccountBackend, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrAccountBackend, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s", domain.ErrAuthorization, replyMessage(raw, resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", domain.ErrAccountBackend, replyMessage(raw, resp.StatusCode))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrAccountBackend, err)
	}
	return nil
}

func replyMessage(raw []byte, status int) string {
	var reply errorReply
	if err := json.Unmarshal(raw, &reply); err == nil && reply.Message != "" {
		return reply.Message
	}
	return fmt.Sprintf("HTTP %d", status)
}
